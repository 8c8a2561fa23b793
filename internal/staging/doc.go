// SPDX-License-Identifier: MPL-2.0

// Package staging resolves the authoritative mod output among the files
// an automation-tool run deposits in a staging directory, and copies the
// resolved set to its final destination under canonical mod-named
// filenames.
//
// A cook-and-stage run produces numbered chunk containers such as
// "pakchunk17-Win64.pak". Base-game content occupies the low chunk
// indices, so the chunk with the highest index is the one holding the
// mod's own content. When IoStore is enabled the winning chunk must be
// accompanied by a ".utoc" table of contents and a ".ucas" data file
// sharing its base name; a ".ucas" without its ".utoc" is meaningless
// and is never staged.
package staging
