package curseforge

// loaderTags are the names loaders appear under in File.GameVersions.
var loaderTags = map[ModLoaderType]string{
	ModLoaderForge:      "Forge",
	ModLoaderCauldron:   "Cauldron",
	ModLoaderLiteLoader: "LiteLoader",
	ModLoaderFabric:     "Fabric",
	ModLoaderQuilt:      "Quilt",
}

// LatestFile returns the newest available file supporting gameVersion and
// loader whose release type is at least as stable as channel, or nil.
// ModLoaderAny and an empty gameVersion match everything.
func LatestFile(files []File, gameVersion string, loader ModLoaderType, channel FileReleaseType) *File {
	var latest *File
	for i := range files {
		f := &files[i]
		if !f.IsAvailable || f.ReleaseType > channel {
			continue
		}
		if gameVersion != "" && !f.SupportsGameVersion(gameVersion) {
			continue
		}
		if tag, ok := loaderTags[loader]; ok && !f.SupportsGameVersion(tag) {
			continue
		}
		if latest == nil || f.FileDate.After(latest.FileDate) {
			latest = f
		}
	}
	return latest
}

// LatestFileIndex searches a mod's latest file indexes the same way, without
// fetching its file list. Higher file IDs are newer.
func LatestFileIndex(mod Mod, gameVersion string, loader ModLoaderType, channel FileReleaseType) *FileIndex {
	var latest *FileIndex
	for i := range mod.LatestFilesIndexes {
		idx := &mod.LatestFilesIndexes[i]
		if idx.ReleaseType > channel {
			continue
		}
		if gameVersion != "" && idx.GameVersion != gameVersion {
			continue
		}
		if loader != ModLoaderAny && (idx.ModLoader == nil || *idx.ModLoader != loader) {
			continue
		}
		if latest == nil || idx.FileID > latest.FileID {
			latest = idx
		}
	}
	return latest
}
