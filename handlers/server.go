package handlers

import (
	"database/sql"

	"github.com/patrickmn/go-cache"
)

// Server carries the shared pool handle and the resolver cache into
// every request path. Both are constructed once at startup; handlers
// never open or close pool connections themselves.
type Server struct {
	DB    *sql.DB
	Cache *cache.Cache
}

func NewServer(db *sql.DB, c *cache.Cache) *Server {
	return &Server{DB: db, Cache: c}
}
