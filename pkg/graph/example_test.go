package graph_test

import (
	"fmt"

	"github.com/kverran/starmap/pkg/graph"
)

func ExampleMarshalLayout() {
	// Bundle positioned nodes into a layout document
	l := graph.Layout{
		Nodes: []graph.PositionedNode{
			graph.NewNode("hub", 10, 20),
			graph.NewNode("leaf", 110, 20),
		},
		Dimensions: graph.Dims2D,
		Strategy:   "exponential",
		Seed:       42,
	}

	data, err := graph.MarshalLayout(l)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println(string(data))
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "hub",
	//       "x": 10,
	//       "y": 20
	//     },
	//     {
	//       "id": "leaf",
	//       "x": 110,
	//       "y": 20
	//     }
	//   ],
	//   "dimensions": 2,
	//   "strategy": "exponential",
	//   "seed": 42
	// }
}

func ExampleUnmarshalLayout() {
	// A 3D layout: dimensions is inferred from the z coordinates
	jsonData := `{
		"nodes": [
			{"id": "a", "x": 1, "y": 2, "z": 3},
			{"id": "b", "x": 4, "y": 5, "z": 6}
		]
	}`

	l, err := graph.UnmarshalLayout([]byte(jsonData))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("nodes: %d, dimensions: %d\n", len(l.Nodes), l.Dimensions)
	// Output:
	// nodes: 2, dimensions: 3
}
