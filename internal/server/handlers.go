package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zephyrtronium/decicalc"
	"github.com/zephyrtronium/decicalc/internal/docstore"
	"github.com/zephyrtronium/decicalc/internal/spacer"
)

// EvaluateRequest is the body of POST /api/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression" binding:"required"`
	Steps      bool   `json:"steps"`
}

// EvaluateResponse is the reply to a successful evaluation.
type EvaluateResponse struct {
	Expression string   `json:"expression"`
	Result     string   `json:"result"`
	Steps      []string `json:"steps,omitempty"`
}

// ErrorResponse is the reply to a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Class is the error class of failed evaluations and assignments.
	Class string `json:"class,omitempty"`
}

// SetVariableRequest is the body of PUT /api/variables/:name.
type SetVariableRequest struct {
	Value string `json:"value" binding:"required"`
}

// Variable is a variable and its value.
type Variable struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Message string `json:"message,omitempty"`
}

// TextRequest is the body of POST /api/text.
type TextRequest struct {
	Text string `json:"text"`
}

func (s *Server) evaluateExpr(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expression is required"})
		return
	}
	s.mu.Lock()
	ctx := s.vars.Clone()
	s.mu.Unlock()

	rctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	// The evaluation cannot be interrupted. On timeout it is abandoned, and
	// the buffer lets it finish without a receiver.
	done := make(chan decicalc.Result, 1)
	go func() {
		done <- s.evaluate(ctx, req.Expression, req.Steps)
	}()
	select {
	case r := <-done:
		if r.Err != nil {
			class := decicalc.ClassOf(r.Err).String()
			s.metrics.recordEval("error", time.Since(start).Seconds())
			s.metrics.recordEvalError(class)
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: r.Err.Error(), Class: class})
			return
		}
		s.metrics.recordEval("ok", time.Since(start).Seconds())
		c.JSON(http.StatusOK, EvaluateResponse{Expression: req.Expression, Result: r.Value, Steps: r.Steps})
	case <-rctx.Done():
		s.metrics.recordEval("timeout", time.Since(start).Seconds())
		s.log.WarnContext(rctx, "evaluation abandoned", "expression", req.Expression, "error", rctx.Err())
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "evaluation timed out"})
	}
}

func (s *Server) listVars(c *gin.Context) {
	s.mu.Lock()
	names := s.vars.Vars()
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		v, _ := s.vars.Lookup(name)
		vars = append(vars, Variable{Name: name, Value: v})
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"variables": vars})
}

func (s *Server) getVar(c *gin.Context) {
	name := c.Param("name")
	s.mu.Lock()
	v, ok := s.vars.Lookup(name)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "undefined variable " + name})
		return
	}
	c.JSON(http.StatusOK, Variable{Name: name, Value: v})
}

func (s *Server) setVar(c *gin.Context) {
	name := c.Param("name")
	var req SetVariableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "value is required"})
		return
	}
	s.mu.Lock()
	err := s.vars.Set(name, req.Value)
	v, _ := s.vars.Lookup(name)
	s.mu.Unlock()
	s.metrics.recordSet(err == nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Class: decicalc.ClassOf(err).String()})
		return
	}
	c.JSON(http.StatusOK, Variable{Name: name, Value: v, Message: decicalc.SetMessage(name, v)})
}

func (s *Server) transformText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON input"})
		return
	}
	r, err := spacer.Transform(req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) listDocs(c *gin.Context) {
	docs, err := s.store.List(c.Param("collection"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func (s *Server) getDoc(c *gin.Context) {
	doc, err := s.store.Get(c.Param("collection"), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// addDoc stores a new document. If the body has a string id, the document is
// merged into that id instead.
func (s *Server) addDoc(c *gin.Context) {
	collection := c.Param("collection")
	doc, ok := bindDoc(c)
	if !ok {
		return
	}
	id, _ := doc["id"].(string)
	var err error
	if id != "" {
		err = s.store.Put(collection, id, doc, true)
	} else {
		id, err = s.store.Add(collection, doc)
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Document saved", "id": id, "collection": collection})
}

// putDoc replaces a document, or merges into it with ?merge=true.
func (s *Server) putDoc(c *gin.Context) {
	collection, id := c.Param("collection"), c.Param("id")
	doc, ok := bindDoc(c)
	if !ok {
		return
	}
	if err := s.store.Put(collection, id, doc, c.Query("merge") == "true"); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document saved", "id": id, "collection": collection})
}

func (s *Server) deleteDoc(c *gin.Context) {
	collection, id := c.Param("collection"), c.Param("id")
	if err := s.store.Delete(collection, id); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted", "id": id, "collection": collection})
}

func bindDoc(c *gin.Context) (docstore.Document, bool) {
	var doc docstore.Document
	if err := c.ShouldBindJSON(&doc); err != nil || len(doc) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Request body is required"})
		return nil, false
	}
	return doc, true
}

func (s *Server) storeError(c *gin.Context, err error) {
	var kerr *docstore.KeyError
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, docstore.ErrEmpty), errors.As(err, &kerr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		s.log.ErrorContext(c.Request.Context(), "document store failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "document store failed"})
	}
}
