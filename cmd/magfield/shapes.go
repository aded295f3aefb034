// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/katalvlaran/magfield/source"
	"github.com/spf13/cobra"
)

// shapeParams documents the scene keys each shape reads.
var shapeParams = map[source.Shape]string{
	source.ShapeCuboid:          "magnetization, dimension [a, b, c]",
	source.ShapeCylinder:        "magnetization, dimension [d, h]",
	source.ShapeCylinderSegment: "magnetization, dimension [r1, r2, h, phi1, phi2]",
	source.ShapeSphere:          "magnetization, diameter",
	source.ShapeDipole:          "moment",
	source.ShapeLoop:            "current, diameter",
	source.ShapeLine:            "current, vertices",
	source.ShapeTriangle:        "magnetization, vertices (3)",
	source.ShapeTriangularMesh:  "magnetization, vertices, faces",
}

func newShapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the supported source shapes and their scene parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SHAPE\tKIND\tPARAMETERS")
			for _, s := range source.Shapes() {
				kind := "current"
				switch {
				case s.IsMagnet():
					kind = "magnet"
				case s == source.ShapeDipole:
					kind = "moment"
				case s == source.ShapeTriangle:
					kind = "sheet"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s, kind, shapeParams[s])
			}
			return w.Flush()
		},
	}
}
