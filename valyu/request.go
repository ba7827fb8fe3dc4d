package valyu

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// SearchType selects which sources a knowledge query searches
type SearchType string

const (
	SearchProprietary SearchType = "proprietary"
	SearchWeb         SearchType = "web"
	SearchAll         SearchType = "all"
)

// SearchTypes lists the accepted search_type values
var SearchTypes = []string{string(SearchProprietary), string(SearchWeb), string(SearchAll)}

// Sentiment grades a transaction in a feedback submission
type Sentiment string

const (
	SentimentVeryGood Sentiment = "very good"
	SentimentGood     Sentiment = "good"
	SentimentBad      Sentiment = "bad"
	SentimentVeryBad  Sentiment = "very bad"
)

// Sentiments lists the accepted sentiment values
var Sentiments = []string{
	string(SentimentVeryGood),
	string(SentimentGood),
	string(SentimentBad),
	string(SentimentVeryBad),
}

// Defaults applied to optional knowledge fields
const (
	DefaultMaxNumResults       = 10
	DefaultSimilarityThreshold = 0.4
	DefaultQueryRewrite        = true
)

// MaxNumResultsLimit bounds max_num_results so it converts to int without wrapping
const MaxNumResultsLimit = math.MaxInt32

// KnowledgeRequest is the body of POST /v1/knowledge
type KnowledgeRequest struct {
	Query               string     `json:"query"`
	SearchType          SearchType `json:"search_type"`
	MaxPrice            float64    `json:"max_price"`
	DataSources         []string   `json:"data_sources,omitempty"`
	MaxNumResults       int        `json:"max_num_results"`
	SimilarityThreshold float64    `json:"similarity_threshold"`
	QueryRewrite        bool       `json:"query_rewrite"`
}

// FeedbackRequest is the body of POST /v1/feedback
type FeedbackRequest struct {
	TxID      string    `json:"tx_id"`
	Feedback  string    `json:"feedback"`
	Sentiment Sentiment `json:"sentiment"`
}

// knowledgeArgs mirrors KnowledgeRequest with pointers so that absent fields
// can be told apart from zero values.
type knowledgeArgs struct {
	Query               *string   `json:"query" validate:"required"`
	SearchType          *string   `json:"search_type" validate:"required,oneof=proprietary web all"`
	MaxPrice            *float64  `json:"max_price" validate:"required"`
	DataSources         *[]string `json:"data_sources"`
	MaxNumResults       *float64  `json:"max_num_results" validate:"omitempty,integer,gt=0,lte=2147483647"`
	SimilarityThreshold *float64  `json:"similarity_threshold" validate:"omitempty,gte=0,lte=1"`
	QueryRewrite        *bool     `json:"query_rewrite"`
}

type feedbackArgs struct {
	TxID      *string `json:"tx_id" validate:"required"`
	Feedback  *string `json:"feedback" validate:"required"`
	Sentiment *string `json:"sentiment" validate:"required,oneof='very good' good bad 'very bad'"`
}

// fieldTypes names the expected JSON type of each argument, for type errors
var fieldTypes = map[string]string{
	"query":                "a string",
	"search_type":          "a string",
	"max_price":            "a number",
	"data_sources":         "an array of strings",
	"max_num_results":      "an integer",
	"similarity_threshold": "a number",
	"query_rewrite":        "a boolean",
	"tx_id":                "a string",
	"feedback":             "a string",
	"sentiment":            "a string",
}

var enumValues = map[string][]string{
	"search_type": SearchTypes,
	"sentiment":   Sentiments,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("integer", validateInteger); err != nil {
		panic(err)
	}
	return v
}

// validateInteger accepts numbers without a fractional part
func validateInteger(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return f == math.Trunc(f) && !math.IsInf(f, 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

// ParseKnowledgeRequest validates raw tool arguments and fills in defaults
func ParseKnowledgeRequest(arguments map[string]any) (KnowledgeRequest, error) {
	var args knowledgeArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return KnowledgeRequest{}, err
	}

	req := KnowledgeRequest{
		Query:               *args.Query,
		SearchType:          SearchType(*args.SearchType),
		MaxPrice:            *args.MaxPrice,
		MaxNumResults:       DefaultMaxNumResults,
		SimilarityThreshold: DefaultSimilarityThreshold,
		QueryRewrite:        DefaultQueryRewrite,
	}
	if args.DataSources != nil {
		req.DataSources = *args.DataSources
	}
	if args.MaxNumResults != nil {
		req.MaxNumResults = int(*args.MaxNumResults)
	}
	if args.SimilarityThreshold != nil {
		req.SimilarityThreshold = *args.SimilarityThreshold
	}
	if args.QueryRewrite != nil {
		req.QueryRewrite = *args.QueryRewrite
	}
	return req, nil
}

// ParseFeedbackRequest validates raw tool arguments
func ParseFeedbackRequest(arguments map[string]any) (FeedbackRequest, error) {
	var args feedbackArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return FeedbackRequest{}, err
	}

	return FeedbackRequest{
		TxID:      *args.TxID,
		Feedback:  *args.Feedback,
		Sentiment: Sentiment(*args.Sentiment),
	}, nil
}

// decodeArgs decodes arguments into target, a pointer to an args struct,
// and checks its validate tags. Every failure is a *ValidationError.
func decodeArgs(arguments map[string]any, target any) error {
	if err := nullError(arguments, target); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		// Keys are case-sensitive; "QUERY" is an unknown key, not "query"
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
		Result: target,
	})
	if err != nil {
		return fmt.Errorf("error creating decoder: %w", err)
	}
	if err := decoder.Decode(arguments); err != nil {
		return typeError(err)
	}

	if err := validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return constraintError(fieldErrs[0])
		}
		return &ValidationError{Field: "arguments", Constraint: err.Error()}
	}
	return nil
}

// nullError reports the first declared field given an explicit null.
// Absent optional fields take defaults; null ones are rejected.
func nullError(arguments map[string]any, target any) *ValidationError {
	t := reflect.TypeOf(target).Elem()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if value, ok := arguments[name]; ok && value == nil {
			return &ValidationError{Field: name, Constraint: "must be " + fieldTypes[name] + ", got null"}
		}
	}
	return nil
}

// quotedName matches the field name mapstructure puts first in its messages,
// e.g. 'data_sources[1]' expected type 'string'.
var quotedName = regexp.MustCompile(`'([a-z_]+)(?:\[\d+\])?'`)

func typeError(err error) *ValidationError {
	m := quotedName.FindStringSubmatch(err.Error())
	if m == nil {
		return &ValidationError{Field: "arguments", Constraint: err.Error()}
	}
	field := m[1]
	want, ok := fieldTypes[field]
	if !ok {
		return &ValidationError{Field: field, Constraint: err.Error()}
	}
	return &ValidationError{Field: field, Constraint: "must be " + want}
}

func constraintError(fe validator.FieldError) *ValidationError {
	var constraint string
	switch fe.Tag() {
	case "required":
		constraint = "is required"
	case "oneof":
		values := enumValues[fe.Field()]
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		constraint = "must be one of " + strings.Join(quoted, ", ")
	case "integer":
		constraint = "must be an integer"
	case "gt":
		constraint = "must be greater than " + fe.Param()
	case "gte":
		constraint = "must be greater than or equal to " + fe.Param()
	case "lte":
		constraint = "must be less than or equal to " + fe.Param()
	default:
		constraint = fmt.Sprintf("failed %q constraint", fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Constraint: constraint}
}
