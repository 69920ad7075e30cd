package client

import (
	"net/http"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"dbnc/pkg/debounce"
)

type DebouncePolicy struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DebouncePolicySpec   `json:"spec,omitempty"`
	Status DebouncePolicyStatus `json:"status,omitempty"`
}

type DebouncePolicySpec struct {
	TargetSelector map[string]string   `json:"targetSelector,omitempty"`
	Rules          []debounce.RuleSpec `json:"rules,omitempty"`
	Interval       int                 `json:"interval,omitempty"`
}

type DebouncePolicyStatus struct {
	SelectorHash       string             `json:"selectorHash,omitempty"`
	SpecHash           string             `json:"specHash,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

type ControllerResponse struct {
	Policy DebouncePolicy `json:"policy"`
}

type Fetcher struct {
	controllerURL string
	fetchInterval *time.Duration
	verbose       bool
	updateChannel chan []debounce.RuleSpec
	cachePath     string
	httpClient    *http.Client
	etag          string // last seen ETag, sent back as If-None-Match
}
