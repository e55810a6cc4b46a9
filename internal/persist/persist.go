// Package persist stores source files, analyses and suggestions in SQL databases.
package persist

import (
	"sync"

	"github.com/huangsam/legacylens/internal/contract"
)

// Table names.
const (
	filesTable       = "legacylens_files"
	analysesTable    = "legacylens_analyses"
	suggestionsTable = "legacylens_suggestions"
)

// allTables is in creation order. Drops go in reverse.
var allTables = []string{filesTable, analysesTable, suggestionsTable}

// StoreManager hands out the file and analysis stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	files        contract.FileStore
	analyses     contract.AnalysisStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wraps a single SQLStore serving both interfaces.
func NewStoreManager(store *SQLStore) *StoreManager {
	return &StoreManager{files: store, analyses: store}
}

// GetFileStore returns the FileStore.
func (mgr *StoreManager) GetFileStore() contract.FileStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.files
}

// GetAnalysisStore returns the AnalysisStore.
func (mgr *StoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analyses
}
