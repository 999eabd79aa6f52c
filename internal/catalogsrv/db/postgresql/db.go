// Description: This file contains the construction of the PostgreSQL-backed
// manager set for the catalog database.
package postgresql

import (
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dbmanager"
)

type rigCatalogDb struct {
	pm *partManager
	im *importManager
	bm *buildManager
	cm *connectionManager
}

func NewRigCatalogDb(c dbmanager.CatalogConn) (*partManager, *importManager, *buildManager, *connectionManager) {
	h := &rigCatalogDb{}
	h.pm = newPartManager(c)
	h.im = newImportManager(c)
	h.bm = newBuildManager(c)
	h.cm = newConnectionManager(c)
	return h.pm, h.im, h.bm, h.cm
}
