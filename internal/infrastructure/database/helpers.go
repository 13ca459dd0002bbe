package database

import (
	"log"
)

// Close releases the pool. Safe to call with a nil pool.
func (db *PostgresDB) Close() {
	if db.Pool == nil {
		return
	}

	log.Println("[DATABASE] Closing connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Println("[DATABASE] Connection pool closed")
}
