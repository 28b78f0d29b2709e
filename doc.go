// Package respack is a resource packer: it turns a directory of design-time
// assets into a directory of production assets, driven by directives encoded
// in file and directory names.
//
// # Naming convention
//
// A basename is split on dots into a name, flags and an extension:
//
//	button.9.scaling nearest.png   name "button", flags ["9" "scaling nearest"], extension "png"
//	ui.pack.@2x                    directory "ui" with flags ["pack" "@2x"]
//	v1."2".txt                     name "v1.2" (quoted segments are part of the name)
//
// See [ParseName].
//
// # Pipeline
//
// [Run] builds a virtual tree of [*File] and [*Directory] nodes from the
// source directory, applies a list of [Task] values in order and writes the
// final tree to the destination. Tasks mutate the tree (replace files with
// generated ones, remove consumed inputs, flatten directories) without
// touching the source; intermediate files live in a per-run working root.
//
// The standard task set lives in the tasks sub-package:
//
//	err := respack.Run(ctx, "assets", "build/assets", tasks.Default(),
//	    respack.WithSettings(respack.TileSize.To(64)))
//
// # Logging
//
// respack logs through log/slog and is silent by default. See [SetLogger].
package respack
