package collect

import "github.com/repochat/repochat/internal/types"

// Stats derives the read-only repository summary from a collected manifest.
func Stats(m *Manifest) types.RepoStats {
	stats := types.RepoStats{
		Extensions: make(map[string]types.ExtensionStats),
	}

	for _, f := range m.Files {
		lines := f.Lines()
		ext := stats.Extensions[f.Extension]
		ext.Count++
		ext.Lines += lines
		stats.Extensions[f.Extension] = ext

		stats.TotalFiles++
		stats.TotalLines += lines
	}

	return stats
}
