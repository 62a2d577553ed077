// Package openapi describes the HTTP API as an OpenAPI 3.0 document.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Document names used for the served description.
const (
	DocumentName = "TodoAPI"
	Title        = "TodoAPI v1"
	Version      = "v1"
)

// TodoSchemaName is the component name of the Todo schema.
const TodoSchemaName = "Todo"

// Document wraps the OpenAPI description with its renderings.
type Document struct {
	*openapi3.T
}

// TodoSchema is the schema of a Todo as sent on the wire.
func TodoSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("name", openapi3.NewStringSchema().WithNullable()).
		WithProperty("isComplete", openapi3.NewBoolSchema())
	schema.Required = []string{"id", "name", "isComplete"}
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}
	return schema
}

func response(description string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description)}
}

func responses(byStatus map[int]*openapi3.ResponseRef) *openapi3.Responses {
	opts := make([]openapi3.NewResponsesOption, 0, len(byStatus))
	for status, ref := range byStatus {
		opts = append(opts, openapi3.WithStatus(status, ref))
	}
	return openapi3.NewResponses(opts...)
}

// New returns the description of the service routes mounted under basePath.
func New(basePath string) *Document {
	todo := TodoSchema()
	todoRef := openapi3.NewSchemaRef("#/components/schemas/"+TodoSchemaName, todo)

	list := openapi3.NewArraySchema()
	list.Items = todoRef
	listResponse := &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(http.StatusText(http.StatusOK)).
			WithContent(openapi3.NewContentWithJSONSchema(list)),
	}

	todoBody := &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(todoRef),
	}
	idParam := openapi3.Parameters{
		&openapi3.ParameterRef{
			Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema()),
		},
	}
	tags := []string{"Todos"}

	created := openapi3.NewResponse().
		WithDescription(http.StatusText(http.StatusCreated)).
		WithJSONSchemaRef(todoRef)
	created.Headers = openapi3.Headers{
		"Location": &openapi3.HeaderRef{
			Value: &openapi3.Header{Parameter: openapi3.Parameter{Schema: openapi3.NewStringSchema().NewRef()}},
		},
	}

	welcome := &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "Welcome",
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusOK: {
					Value: openapi3.NewResponse().
						WithDescription(http.StatusText(http.StatusOK)).
						WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"})),
				},
			}),
		},
	}

	collection := &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "CreateTodo",
			Tags:        tags,
			RequestBody: todoBody,
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusCreated:    {Value: created},
				http.StatusBadRequest: response(http.StatusText(http.StatusBadRequest)),
				http.StatusConflict:   response(http.StatusText(http.StatusConflict)),
			}),
		},
		Get: &openapi3.Operation{
			OperationID: "GetAllTodos",
			Tags:        tags,
			Responses:   responses(map[int]*openapi3.ResponseRef{http.StatusOK: listResponse}),
		},
	}

	complete := &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "GetCompleteTodos",
			Tags:        tags,
			Responses:   responses(map[int]*openapi3.ResponseRef{http.StatusOK: listResponse}),
		},
	}

	notFound := response(http.StatusText(http.StatusNotFound))
	noContent := response(http.StatusText(http.StatusNoContent))
	item := &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "GetTodoById",
			Tags:        tags,
			Parameters:  idParam,
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusOK: {
					Value: openapi3.NewResponse().
						WithDescription(http.StatusText(http.StatusOK)).
						WithJSONSchemaRef(todoRef),
				},
				http.StatusNotFound: notFound,
			}),
		},
		Put: &openapi3.Operation{
			OperationID: "UpdateTodo",
			Tags:        tags,
			Parameters:  idParam,
			RequestBody: todoBody,
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusNoContent: noContent,
				http.StatusNotFound:  notFound,
			}),
		},
		Delete: &openapi3.Operation{
			OperationID: "DeleteTodo",
			Tags:        tags,
			Parameters:  idParam,
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusNoContent: noContent,
				http.StatusNotFound:  notFound,
			}),
		},
	}

	return &Document{T: &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: Title, Version: Version},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/", welcome),
			openapi3.WithPath(basePath+"/", collection),
			openapi3.WithPath(basePath+"/complete", complete),
			openapi3.WithPath(basePath+"/{id}", item),
		),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{TodoSchemaName: openapi3.NewSchemaRef("", todo)},
		},
	}}
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d.T, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode openapi document: %w", err)
	}
	return data, nil
}

// YAML renders the document as block-style YAML, converted from the JSON
// rendering so both carry the same content.
func (d *Document) YAML() ([]byte, error) {
	data, err := json.Marshal(d.T)
	if err != nil {
		return nil, fmt.Errorf("failed to encode openapi document: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert openapi document: %w", err)
	}
	clearStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode openapi document: %w", err)
	}
	return out, nil
}

// clearStyle drops the flow and quoting styles inherited from JSON.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

// JSONSchema returns the named component schema as a standalone JSON Schema
// (draft 2020-12), for validators that do not know OpenAPI's "nullable".
func (d *Document) JSONSchema(name string) ([]byte, error) {
	if d.Components == nil || d.Components.Schemas[name] == nil {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	data, err := json.Marshal(d.Components.Schemas[name].Value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema %s: %w", name, err)
	}
	var schema interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", name, err)
	}

	return json.MarshalIndent(toJSONSchema(schema), "", "  ")
}

// toJSONSchema rewrites `nullable: true` into a type list that admits null.
func toJSONSchema(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for key, child := range v {
			v[key] = toJSONSchema(child)
		}
		if nullable, _ := v["nullable"].(bool); nullable {
			delete(v, "nullable")
			if typ, ok := v["type"].(string); ok {
				v["type"] = []interface{}{typ, "null"}
			}
		}
		return v
	case []interface{}:
		for i, child := range v {
			v[i] = toJSONSchema(child)
		}
		return v
	default:
		return v
	}
}

