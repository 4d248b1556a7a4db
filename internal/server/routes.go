package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/docwire/internal/docproto"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// HeaderStable reports whether a round trip reproduced the posted bytes.
const HeaderStable = "X-Docwire-Stable"

// SchemaInfo is the JSON listing of one registered schema.
type SchemaInfo struct {
	Name   string      `json:"name"`
	Open   bool        `json:"open"`
	Fields []FieldInfo `json:"fields"`
}

type FieldInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Ref      string `json:"ref,omitempty"`
	Required bool   `json:"required,omitempty"`
}

func (s *Server) RegisterRoutes() {
	routes := s.router
	routes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": "docwire",
			"version": Version,
		})
	})

	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.GET("/schemas", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"schemas": s.ListSchemas()})
	})

	routes.GET("/schemas/:schema", func(c *gin.Context) {
		target, ok := s.Registry.Resolve(c.Param("schema"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
			return
		}
		c.JSON(http.StatusOK, describe(target))
	})

	routes.POST("/documents/:schema/decode", func(c *gin.Context) {
		target, body, ok := s.readPayload(c)
		if !ok {
			return
		}
		doc, err := docproto.Unmarshal(body, target, s.opts...)
		if err != nil {
			s.decodeFailed(c, target, err)
			return
		}
		out, err := docproto.MarshalJSON(doc, c.Query("pretty") != "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", out)
	})

	routes.POST("/documents/:schema/roundtrip", func(c *gin.Context) {
		target, body, ok := s.readPayload(c)
		if !ok {
			return
		}
		doc, err := docproto.Unmarshal(body, target, s.opts...)
		if err != nil {
			s.decodeFailed(c, target, err)
			return
		}
		out, err := docproto.Marshal(doc, s.opts...)
		if err != nil {
			s.decodeFailed(c, target, err)
			return
		}
		c.Header(HeaderStable, strconv.FormatBool(bytes.Equal(out, body)))
		c.Data(http.StatusOK, "application/octet-stream", out)
	})
}

// ListSchemas describes every registered schema in name order.
func (s *Server) ListSchemas() []SchemaInfo {
	names := s.Registry.Names()
	out := make([]SchemaInfo, 0, len(names))
	for _, name := range names {
		if sch, ok := s.Registry.Resolve(name); ok {
			out = append(out, describe(sch))
		}
	}
	return out
}

func (s *Server) readPayload(c *gin.Context) (*schema.Schema, []byte, bool) {
	target, ok := s.Registry.Resolve(c.Param("schema"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
		return nil, nil, false
	}
	reader := io.Reader(c.Request.Body)
	if s.maxPayloadBytes > 0 {
		reader = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxPayloadBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return nil, nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	markPayload(c, target.Name, len(body))
	return target, body, true
}

func (s *Server) decodeFailed(c *gin.Context, target *schema.Schema, err error) {
	resp := gin.H{"error": err.Error(), "schema": target.Name}
	var fce *docproto.FieldContextError
	if errors.As(err, &fce) {
		resp["field"] = fce.FieldPath()
		markField(c, fce.FieldPath())
	}
	log.Debug().Err(err).Str("schema", target.Name).Msg("payload rejected")
	c.JSON(http.StatusBadRequest, resp)
}

func describe(s *schema.Schema) SchemaInfo {
	info := SchemaInfo{Name: s.Name, Open: s.Open, Fields: make([]FieldInfo, 0, len(s.Fields))}
	for _, f := range s.Fields {
		info.Fields = append(info.Fields, FieldInfo{
			Name:     f.Name,
			Kind:     f.Kind.String(),
			Ref:      f.Ref,
			Required: f.Required,
		})
	}
	return info
}
