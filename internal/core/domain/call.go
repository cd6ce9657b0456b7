package domain

import (
	"encoding/json"
	"io"
	"time"
)

// RecordingStatus is the processing state of an uploaded recording.
type RecordingStatus string

const (
	RecordingPending    RecordingStatus = "pending"
	RecordingProcessing RecordingStatus = "processing"
	RecordingInProgress RecordingStatus = "in_progress"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

// Sentiment assigned by the backend analysis.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentPending  Sentiment = "pending"
)

// RecordingAgent is the agent reference embedded in a recording. List responses carry
// only a display name, detail responses an object.
type RecordingAgent struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

func (a *RecordingAgent) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Name)
	}
	type plain RecordingAgent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = RecordingAgent(p)
	return nil
}

// CallRecording is an uploaded customer-service call.
type CallRecording struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	Agent           RecordingAgent  `json:"agent"`
	CustomerPhone   string          `json:"customer_phone"`
	DurationSeconds int             `json:"duration_seconds"`
	UploadedAt      time.Time       `json:"uploaded_at"`
	Status          RecordingStatus `json:"status"`
	FileURL         string          `json:"file_url,omitempty"`
	Sentiment       Sentiment       `json:"sentiment,omitempty"`
}

// ComplianceCheck is the boolean checklist attached to an analysis.
type ComplianceCheck struct {
	IdentityVerification bool `json:"identity_verification"`
	DisclosureStatements bool `json:"disclosure_statements"`
	CallRecordingNotice  bool `json:"call_recording_notice"`
	DataProtection       bool `json:"data_protection"`
}

// ComplianceItem is one labelled row of the checklist.
type ComplianceItem struct {
	Label  string
	Passed bool
}

func (c ComplianceCheck) Items() []ComplianceItem {
	return []ComplianceItem{
		{Label: "Identity verification", Passed: c.IdentityVerification},
		{Label: "Disclosure statements", Passed: c.DisclosureStatements},
		{Label: "Call recording notice", Passed: c.CallRecordingNotice},
		{Label: "Data protection", Passed: c.DataProtection},
	}
}

// Passed counts the satisfied checks.
func (c ComplianceCheck) Passed() int {
	n := 0
	for _, it := range c.Items() {
		if it.Passed {
			n++
		}
	}
	return n
}

func (c ComplianceCheck) Total() int { return len(c.Items()) }

// CallAnalysis is the AI analysis of a single recording (one-to-one).
type CallAnalysis struct {
	ID                int             `json:"id"`
	CallRecordingID   int             `json:"call_recording_id"`
	AgentID           int             `json:"agent_id"`
	TranscriptionText string          `json:"transcription_text"`
	AgentText         string          `json:"agent_text"`
	CustomerText      string          `json:"customer_text"`
	Sentiment         Sentiment       `json:"sentiment"`
	KeyIssues         []string        `json:"key_issues"`
	CoverageScore     float64         `json:"coverage_score"`   // 0–10
	ConfidenceScore   float64         `json:"confidence_score"` // 0–1
	ComplianceCheck   ComplianceCheck `json:"compliance_check"`
	CreatedAt         time.Time       `json:"created_at"`
}

// UploadInput carries a multipart recording upload.
type UploadInput struct {
	Title         string
	AgentID       string
	CustomerPhone string
	FileName      string
	File          io.Reader
	Size          int64
}
