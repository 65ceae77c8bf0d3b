package raytracer

import "errors"

var (
	// ErrUnknownMesh is returned when an entity references a mesh the snapshot does not hold.
	ErrUnknownMesh = errors.New("raytracer: entity references an unknown mesh")

	// ErrUnknownMaterial is returned when an entity references a material the snapshot does not hold.
	ErrUnknownMaterial = errors.New("raytracer: entity references an unknown material")

	// ErrImageNotTileAligned is returned by NewPipeline when the output image is not an exact
	// multiple of the tile size and partial tiles are not allowed.
	ErrImageNotTileAligned = errors.New("raytracer: image dimensions are not a multiple of the tile size")

	// ErrNilSnapshot is returned when RunFrame is called without a snapshot.
	ErrNilSnapshot = errors.New("raytracer: nil snapshot")

	// ErrReleased is returned when a released stager is asked to upload.
	ErrReleased = errors.New("raytracer: stager released")

	// ErrTooLarge is returned when a table outgrows the 32-bit offsets the kernel uses.
	ErrTooLarge = errors.New("raytracer: table exceeds 32-bit addressing")
)
