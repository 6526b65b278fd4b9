package shape_test

import (
	"errors"
	"fmt"

	shape "github.com/SimonDaKappa/go-shape"
)

type Point struct {
	X     int
	Y     int
	Label string
}

var pointSchema = shape.MustSchema[Point]("Point",
	shape.Required("X", shape.P("coords", "x"), shape.Identity()),
	shape.Required("Y", shape.P("coords", "y"), shape.Identity()),
	shape.WithDefault("Label", shape.P("label"), shape.Cast(shape.CastString), "origin"),
)

func ExampleParseOne() {
	doc, _ := shape.DecodeJSONString(`{"coords": {"x": 3, "y": 0}}`)

	p, err := shape.ParseOne(pointSchema, doc)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%+v\n", p)
	// Output: {X:3 Y:0 Label:origin}
}

func ExampleParseOne_missing() {
	doc, _ := shape.DecodeJSONString(`{"coords": {"x": 3, "y": null}}`)

	_, err := shape.ParseOne(pointSchema, doc)
	fmt.Println(errors.Is(err, shape.ErrMissingRequiredField))
	fmt.Println(err)
	// Output:
	// true
	// missing required field: at least one field of "Point" was absent or null without a default (missing: Y)
}

type Stop struct {
	Name  string `shape:"path:'name'"`
	Order int    `shape:"path:'order' default:'1'"`
}

type Route struct {
	Name  string `shape:"path:'name'"`
	Stops []Stop `shape:"path:'stops' recurse:'list' default:''"`
}

func ExampleSchemaFromTags() {
	schema, err := shape.SchemaFromTags[Route]("Route")
	if err != nil {
		panic(err)
	}

	routes, err := shape.DecodeMany(schema, []byte(`[
		{"name": "a", "stops": [{"name": "home"}, {"name": "work", "order": 2}]},
		{"name": "b"}
	]`))
	if err != nil {
		panic(err)
	}
	for _, r := range routes {
		fmt.Printf("%s %+v\n", r.Name, r.Stops)
	}
	// Output:
	// a [{Name:home Order:1} {Name:work Order:2}]
	// b []
}
