// Package formats provides parsers for scene description and mesh files.
package formats

// Note: the scene text format is implemented in scene.go and scene_parse.go
// Note: Wavefront OBJ geometry and MTL materials are in obj.go and mtl.go
