// Package scene loads YAML scene documents and turns them into field
// evaluations.
//
// A scene lists sources (optionally nested in groups), one observer form
// and evaluation settings:
//
//	name: demo
//	quantity: B
//	sources:
//	  - name: magnet
//	    shape: cuboid
//	    magnetization: [0, 0, 1000]
//	    dimension: [10, 10, 10]
//	    motions:
//	      - sweep: {from: [0, 0, 0], to: [20, 0, 0], n: 5}
//	observers:
//	  points: [[0, 0, 15]]
//
// Parse and Load start from Default, so omitted settings keep their
// defaults. Build resolves a Scene into engine inputs; Evaluate runs it and
// returns an EvalResult ready for JSON encoding.
package scene
