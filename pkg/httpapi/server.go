// Package httpapi exposes health and statistics endpoints next to the bot.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

// StatsSource is the read-only view of the store the endpoints need.
type StatsSource interface {
	Ping(ctx context.Context) error
	CountRecords(ctx context.Context) (total int64, completed int64, err error)
	CountAdmins(ctx context.Context) (int64, error)
}

// DialogueCounter reports in-progress conversations.
type DialogueCounter interface {
	ActiveDialogues() int
}

const probeTimeout = 3 * time.Second

// NewRouter builds the gin engine with /healthz and /stats. dialogues may be nil.
func NewRouter(src StatsSource, dialogues DialogueCounter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", healthHandler(src))
	r.GET("/stats", (&statsCollector{src: src, dialogues: dialogues}).handle)
	return r
}

// NewServer wraps NewRouter in an http.Server listening on addr.
func NewServer(addr string, src StatsSource, dialogues DialogueCounter) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(src, dialogues),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func healthHandler(src StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()
		if err := src.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type stats struct {
	Total     int64
	Completed int64
	Admins    int64
}

// statsCollector collapses concurrent /stats requests into one round of queries.
type statsCollector struct {
	src       StatsSource
	dialogues DialogueCounter
	sf        singleflight.Group
}

func (s *statsCollector) collect(ctx context.Context) (stats, error) {
	v, err, _ := s.sf.Do("stats", func() (interface{}, error) {
		var out stats
		var err error
		if out.Total, out.Completed, err = s.src.CountRecords(ctx); err != nil {
			return stats{}, err
		}
		if out.Admins, err = s.src.CountAdmins(ctx); err != nil {
			return stats{}, err
		}
		return out, nil
	})
	if err != nil {
		return stats{}, err
	}
	return v.(stats), nil
}

func (s *statsCollector) handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	st, err := s.collect(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	body := gin.H{
		"records": gin.H{
			"total":     st.Total,
			"completed": st.Completed,
			"pending":   st.Total - st.Completed,
		},
		"admins": st.Admins,
	}
	if s.dialogues != nil {
		body["active_dialogues"] = s.dialogues.ActiveDialogues()
	}
	c.JSON(http.StatusOK, body)
}
