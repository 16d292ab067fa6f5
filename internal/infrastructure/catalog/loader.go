// Package catalog loads the credit workflow catalog (statuses, manual
// transitions and committee decisions) from YAML and compiles it into a
// credit.WorkflowDefinition.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

type fileStatus struct {
	Code          string `yaml:"code"`
	Name          string `yaml:"name"`
	NameFr        string `yaml:"name_fr"`
	Description   string `yaml:"description"`
	Color         string `yaml:"color"`
	SequenceOrder int    `yaml:"sequence_order"`
	AllowsEdit    bool   `yaml:"allows_edit"`
	IsActive      *bool  `yaml:"is_active"`
}

type fileDecision struct {
	Code           string `yaml:"code"`
	Name           string `yaml:"name"`
	NameFr         string `yaml:"name_fr"`
	IsApproval     bool   `yaml:"is_approval"`
	RequiresReason bool   `yaml:"requires_reason"`
	ReducesAmount  bool   `yaml:"reduces_amount"`
	TargetStatus   string `yaml:"target_status"`
}

type fileCatalog struct {
	InitialStatus    string              `yaml:"initial_status"`
	CommitteeStatus  string              `yaml:"committee_status"`
	TerminalStatuses []string            `yaml:"terminal_statuses"`
	Statuses         []fileStatus        `yaml:"statuses"`
	Transitions      map[string][]string `yaml:"transitions"`
	Decisions        []fileDecision      `yaml:"decisions"`
}

// Load returns the compiled workflow at path, or the built-in default workflow
// when path is empty.
func Load(path string, log *zap.Logger) (*credit.WorkflowDefinition, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		log.Info("Using built-in workflow catalog")
		return credit.NewWorkflowDefinition(credit.DefaultWorkflowConfig())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow catalog: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		log.Error("Invalid workflow catalog", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	log.Info("Workflow catalog loaded",
		zap.String("path", path),
		zap.Int("statuses", len(def.Statuses())),
		zap.Int("decisions", len(def.Decisions())),
	)
	return def, nil
}

// Parse validates a YAML catalog document against the catalog schema and compiles it
func Parse(data []byte) (*credit.WorkflowDefinition, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	return credit.NewWorkflowDefinition(cfg)
}

func decode(data []byte) (credit.WorkflowConfig, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return credit.WorkflowConfig{}, credit.NewConfigurationError("workflow catalog is not valid YAML: %v", err)
	}
	if doc == nil {
		return credit.WorkflowConfig{}, credit.NewConfigurationError("workflow catalog is empty")
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return credit.WorkflowConfig{}, credit.NewConfigurationError("workflow catalog cannot be checked: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return credit.WorkflowConfig{}, credit.NewConfigurationError("workflow catalog does not match schema: %s", strings.Join(msgs, "; "))
	}

	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return credit.WorkflowConfig{}, credit.NewConfigurationError("workflow catalog cannot be decoded: %v", err)
	}
	return fc.toConfig(), nil
}

func (fc fileCatalog) toConfig() credit.WorkflowConfig {
	cfg := credit.WorkflowConfig{
		InitialStatus:   credit.StatusCode(fc.InitialStatus),
		CommitteeStatus: credit.StatusCode(fc.CommitteeStatus),
		Transitions:     make(map[credit.StatusCode][]credit.StatusCode, len(fc.Transitions)),
	}
	for _, t := range fc.TerminalStatuses {
		cfg.TerminalStatuses = append(cfg.TerminalStatuses, credit.StatusCode(t))
	}
	for _, s := range fc.Statuses {
		active := true
		if s.IsActive != nil {
			active = *s.IsActive
		}
		cfg.Statuses = append(cfg.Statuses, credit.ApplicationStatus{
			Code:          credit.StatusCode(s.Code),
			Name:          s.Name,
			NameFr:        s.NameFr,
			Description:   s.Description,
			Color:         s.Color,
			SequenceOrder: s.SequenceOrder,
			AllowsEdit:    s.AllowsEdit,
			IsActive:      active,
		})
	}
	for from, targets := range fc.Transitions {
		edges := make([]credit.StatusCode, 0, len(targets))
		for _, to := range targets {
			edges = append(edges, credit.StatusCode(to))
		}
		cfg.Transitions[credit.StatusCode(from)] = edges
	}
	for _, d := range fc.Decisions {
		cfg.Decisions = append(cfg.Decisions, credit.CommitteeDecision{
			Code:           credit.DecisionCode(d.Code),
			Name:           d.Name,
			NameFr:         d.NameFr,
			IsApproval:     d.IsApproval,
			RequiresReason: d.RequiresReason,
			ReducesAmount:  d.ReducesAmount,
			TargetStatus:   credit.StatusCode(d.TargetStatus),
		})
	}
	return cfg
}
