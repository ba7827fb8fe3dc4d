package valyu

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Operation IDs of the upstream endpoints
const (
	OperationKnowledge = "knowledge"
	OperationFeedback  = "feedback"
)

//go:embed openapi.yaml
var openAPISpec []byte

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(openAPISpec)
})

// DefaultCatalog returns the catalog of the embedded Valyu API description
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// Endpoint locates a single upstream operation
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

// Catalog maps operation IDs to endpoints, as declared by an OpenAPI document
type Catalog struct {
	// BaseURL is the first server URL declared by the document
	BaseURL   string
	endpoints map[string]Endpoint
}

// LoadCatalog parses an OpenAPI 3 document and indexes its operations by operationId
func LoadCatalog(spec []byte) (*Catalog, error) {
	doc, err := libopenapi.NewDocument(spec)
	if err != nil {
		return nil, fmt.Errorf("error parsing OpenAPI spec: %w", err)
	}

	model, errs := doc.BuildV3Model()
	if errs != nil {
		return nil, fmt.Errorf("error building OpenAPI model: %v", errs)
	}
	if model == nil {
		return nil, fmt.Errorf("error building OpenAPI model: no model produced")
	}

	if len(model.Model.Servers) == 0 || model.Model.Servers[0].URL == "" {
		return nil, fmt.Errorf("OpenAPI spec must include at least one server URL")
	}

	catalog := &Catalog{
		BaseURL:   strings.TrimSuffix(model.Model.Servers[0].URL, "/"),
		endpoints: make(map[string]Endpoint),
	}

	if model.Model.Paths == nil || model.Model.Paths.PathItems == nil {
		return catalog, nil
	}

	for pair := model.Model.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		for method, op := range operations(pair.Value()) {
			if op.OperationId == "" {
				continue
			}
			description := op.Description
			if description == "" {
				description = op.Summary
			}
			catalog.endpoints[op.OperationId] = Endpoint{
				Method:      method,
				Path:        path,
				Description: description,
			}
		}
	}

	return catalog, nil
}

// Endpoint returns the endpoint for operationID
func (c *Catalog) Endpoint(operationID string) (Endpoint, bool) {
	e, ok := c.endpoints[operationID]
	return e, ok
}

func operations(item *v3.PathItem) map[string]*v3.Operation {
	ops := make(map[string]*v3.Operation)
	if item == nil {
		return ops
	}
	if item.Get != nil {
		ops[http.MethodGet] = item.Get
	}
	if item.Post != nil {
		ops[http.MethodPost] = item.Post
	}
	if item.Put != nil {
		ops[http.MethodPut] = item.Put
	}
	if item.Delete != nil {
		ops[http.MethodDelete] = item.Delete
	}
	if item.Patch != nil {
		ops[http.MethodPatch] = item.Patch
	}
	return ops
}
