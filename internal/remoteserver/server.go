// Package remoteserver implements the remote wire protocol: existence
// checks, upload and download of blocks and manifests, mirroring the local
// object store's layout under a server-chosen root. Built on gin, with the
// usual gin.Logger/gin.Recovery middleware and CORS configuration.
package remoteserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"shard/internal/ledger"
	"shard/internal/metrics"
	"shard/internal/objectstore"
)

// Server holds the collaborators the remote protocol handlers need: a
// local-object-store-shaped backing store under a server-chosen root, an
// optional audit ledger, optional request metrics, and an optional bearer
// API key gating mutating (PUT) requests.
type Server struct {
	store      *objectstore.Store
	ledger     ledger.Ledger
	metrics    *metrics.Registry
	apiKeyHash []byte // nil disables auth (the default: no authentication)
}

// Option configures a Server.
type Option func(*Server)

// WithLedger attaches an audit ledger; defaults to a no-op ledger.
func WithLedger(l ledger.Ledger) Option {
	return func(s *Server) { s.ledger = l }
}

// WithMetrics attaches a metrics registry; defaults to nil (disabled).
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAPIKey enables bearer-token gating of PUT requests, storing only the
// bcrypt hash of key. This is additive operator hardening; the protocol
// itself requires none.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		if key == "" {
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
		if err != nil {
			return
		}
		s.apiKeyHash = hash
	}
}

// New builds a Server rooted at storageRoot (a directory the server owns
// exclusively, laid out exactly like the local object store).
func New(storageRoot string, opts ...Option) (*Server, error) {
	store := objectstore.Open(storageRoot)
	if err := store.Init(); err != nil {
		return nil, err
	}
	s := &Server{store: store, ledger: ledger.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router builds the gin engine implementing the block/manifest endpoint
// table plus an informational readiness probe and a Prometheus scrape
// endpoint.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowMethods:    []string{http.MethodGet, http.MethodPut, http.MethodHead, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		AllowAllOrigins: true,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.HEAD("/blocks/:id", s.instrumented("blocks", "HEAD", s.headBlock))
	r.PUT("/blocks/:id", s.instrumented("blocks", "PUT", s.requireAuth(s.putBlock)))
	r.GET("/blocks/:id", s.instrumented("blocks", "GET", s.getBlock))

	r.HEAD("/manifests/:id", s.instrumented("manifests", "HEAD", s.headManifest))
	r.PUT("/manifests/:id", s.instrumented("manifests", "PUT", s.requireAuth(s.putManifest)))
	r.GET("/manifests/:id", s.instrumented("manifests", "GET", s.getManifest))

	return r
}

func (s *Server) instrumented(endpoint, method string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		h(c)
		if s.metrics != nil {
			s.metrics.Observe(endpoint, method, http.StatusText(c.Writer.Status()), time.Since(start))
		}
	}
}

func (s *Server) headBlock(c *gin.Context) {
	id := c.Param("id")
	if s.store.HasObject(id) {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) putBlock(c *gin.Context) {
	s.putInto(c, "block", s.store.WriteObject)
}

func (s *Server) getBlock(c *gin.Context) {
	s.getFrom(c, "block", s.store.ReadObject)
}

func (s *Server) headManifest(c *gin.Context) {
	id := c.Param("id")
	if s.store.HasManifest(id) {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) putManifest(c *gin.Context) {
	s.putInto(c, "manifest", s.store.WriteManifest)
}

func (s *Server) getManifest(c *gin.Context) {
	s.getFrom(c, "manifest", s.store.ReadManifest)
}

// putInto reads the raw request body and writes it under id via write. The
// server performs no hash verification on PUT; clients are trusted to
// supply matching bytes.
func (s *Server) putInto(c *gin.Context, kind string, write func(id string, data []byte) error) {
	id := c.Param("id")
	body, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := write(id, body); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	s.ledger.Record(c.Request.Context(), ledgerEvent(kind, "PUT", id))
	c.Status(http.StatusOK)
}

func (s *Server) getFrom(c *gin.Context, kind string, read func(id string) ([]byte, error)) {
	id := c.Param("id")
	data, err := read(id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	s.ledger.Record(c.Request.Context(), ledgerEvent(kind, "GET", id))
	c.Data(http.StatusOK, "application/octet-stream", data)
}
