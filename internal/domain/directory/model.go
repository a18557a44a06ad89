package directory

// TeamSources holds every place a league's team ids may be recorded. The
// reconciler unions them; no single source is trusted on its own.
type TeamSources struct {
	// Canonical is the current set-shaped index.
	Canonical []string
	// LegacyList is the flat list field older writers maintained. It is
	// deleted once its contents have been folded into the canonical set.
	LegacyList []string
	// CardIDs are team ids embedded in legacy card documents.
	CardIDs []string
}
