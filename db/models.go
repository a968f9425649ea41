package db

import (
	"time"

	"gorm.io/gorm"
)

// Mod is a tracked CurseForge project and the file currently installed for it.
// FileID is zero while nothing is installed yet.
type Mod struct {
	gorm.Model
	ModID       int       `gorm:"uniqueIndex"` // CurseForge mod ID
	Slug        string    `gorm:"index"`
	Name        string
	ClassID     int       // 6 mods, 12 resource packs, 6552 shaders
	Updated     time.Time // DateModified of the mod on CurseForge
	FileID      int
	FileName    string
	DisplayName string
	ReleaseType int
	Fingerprint uint32
	InstallPath string    // Path where the file is currently installed
}

// ModVersion is a file previously installed for a mod, kept for rollback.
type ModVersion struct {
	gorm.Model
	ModID       int    `gorm:"index"` // References Mod.ModID
	FileID      int
	DisplayName string
	FileName    string
	ReleaseType int
	ArchivePath string // Path to the archived file (if kept)
}
