// Package stubstore is an in-memory stand-in for the metadata store and the
// permission service. It backs the `orca stub` command for local runs and the
// HTTP client tests; it is not part of the production surface.
package stubstore

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jervi/orca/pkg/models"
)

// permission is the wire form served by the /authorize resource.
type permission struct {
	Admin bool       `json:"admin"`
	Roles []roleView `json:"roles"`
}

type roleView struct {
	Name string `json:"name"`
}

// Store holds the in-memory state behind the stub endpoints.
type Store struct {
	mu              sync.Mutex
	pipelineHistory map[string][]models.TrackedObject
	deliveries      map[string]models.TrackedObject
	serviceAccounts map[string]models.TrackedObject
	permissions     map[string]permission

	now func() int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		pipelineHistory: make(map[string][]models.TrackedObject),
		deliveries:      make(map[string]models.TrackedObject),
		serviceAccounts: make(map[string]models.TrackedObject),
		permissions:     make(map[string]permission),
		now:             func() int64 { return time.Now().UnixMilli() },
	}
}

// PutPermission grants roles to a user or service account.
func (s *Store) PutPermission(id string, admin bool, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[id] = toPermission(admin, roles)
}

// PutDeliveryConfig stores a delivery config stamped with the current time.
func (s *Store) PutDeliveryConfig(id string, config models.TrackedObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	config["id"] = id
	config["updateTs"] = s.now()
	s.deliveries[id] = config
}

func toPermission(admin bool, roles []string) permission {
	p := permission{Admin: admin}
	for _, role := range roles {
		p.Roles = append(p.Roles, roleView{Name: role})
	}
	return p
}

// Handler returns the echo server exposing the front50 and fiat routes the
// clients consume.
func (s *Store) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/pipelines/:id/history", s.getPipelineHistory)
	e.POST("/pipelines", s.savePipeline)
	e.GET("/deliveries/:id", s.getDeliveryConfig)
	e.GET("/serviceAccounts/:id", s.getServiceAccount)
	e.POST("/serviceAccounts", s.saveServiceAccount)
	e.DELETE("/cache/serviceAccounts/:id", s.invalidateServiceAccountCache)
	e.GET("/authorize/:id", s.getPermission)

	return e
}

func (s *Store) getPipelineHistory(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.pipelineHistory[c.Param("id")]
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit >= 0 && limit < len(history) {
		history = history[:limit]
	}
	if history == nil {
		history = []models.TrackedObject{}
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Store) savePipeline(c echo.Context) error {
	var pipeline models.Pipeline
	if err := c.Bind(&pipeline); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pipeline: "+err.Error())
	}
	id := pipeline.ID()
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pipeline must carry an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.TrackedObject(pipeline)
	entry["updateTs"] = s.now()
	s.pipelineHistory[id] = append([]models.TrackedObject{entry}, s.pipelineHistory[id]...)
	return c.NoContent(http.StatusOK)
}

func (s *Store) getDeliveryConfig(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, ok := s.deliveries[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "delivery config not found")
	}
	return c.JSON(http.StatusOK, config)
}

func (s *Store) getServiceAccount(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.serviceAccounts[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "service account not found")
	}
	return c.JSON(http.StatusOK, account)
}

func (s *Store) saveServiceAccount(c echo.Context) error {
	var account models.ServiceAccount
	if err := c.Bind(&account); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service account: "+err.Error())
	}
	if account.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "service account must carry a name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.serviceAccounts[account.Name] = models.TrackedObject{
		"name":     account.Name,
		"memberOf": account.MemberOf,
		"updateTs": s.now(),
	}
	// The real permission service syncs accounts on its own schedule; the
	// stub grants the account its own memberships immediately so repeated
	// local runs exercise the no-change fast path.
	s.permissions[account.Name] = toPermission(false, account.MemberOf)
	return c.NoContent(http.StatusOK)
}

func (s *Store) invalidateServiceAccountCache(c echo.Context) error {
	// Nothing is cached; acknowledging is enough for the monitor's contract.
	return c.NoContent(http.StatusOK)
}

func (s *Store) getPermission(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.permissions[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown identity")
	}
	if p.Roles == nil {
		p.Roles = []roleView{}
	}
	return c.JSON(http.StatusOK, p)
}
