package postgresql

import (
	"context"
	"database/sql"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/dbmanager"
)

// Part Manager
type partManager struct {
	c dbmanager.CatalogConn
}

func (pm *partManager) conn() *sql.Conn {
	return pm.c.Conn()
}

func newPartManager(c dbmanager.CatalogConn) *partManager {
	return &partManager{c: c}
}

// Import Manager
type importManager struct {
	c dbmanager.CatalogConn
}

func (im *importManager) conn() *sql.Conn {
	return im.c.Conn()
}

func newImportManager(c dbmanager.CatalogConn) *importManager {
	return &importManager{c: c}
}

// Build Manager
type buildManager struct {
	c dbmanager.CatalogConn
}

func (bm *buildManager) conn() *sql.Conn {
	return bm.c.Conn()
}

func newBuildManager(c dbmanager.CatalogConn) *buildManager {
	return &buildManager{c: c}
}

// Connection Manager
type connectionManager struct {
	c dbmanager.CatalogConn
}

func newConnectionManager(c dbmanager.CatalogConn) *connectionManager {
	return &connectionManager{c: c}
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}
