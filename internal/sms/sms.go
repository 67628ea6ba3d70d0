// Package sms handles the text-message complaint channel: parsing the
// inbound gateway webhook body and sending confirmations back through the
// SMS provider.
//
// Two inbound shapes are accepted, both starting with the ILECO keyword:
//
//	ILECO OUTAGE Juan Dela Cruz | Brgy. Bacan, Cabatuan | 09171234567 | no power since 8am
//	ILECO walang kuryente sa purok namin
//
// The first is the structured format with pipe-separated fields after the
// type keyword; the second is free-form and gets its issue type detected
// from the text.
package sms

import (
	"errors"
	"strings"

	"github.com/ileco-one/triage-backend/internal/classify"
)

// ErrNotComplaint marks an inbound message without the ILECO keyword.
// The webhook ignores these instead of replying.
var ErrNotComplaint = errors.New("message is not an ILECO complaint")

// Report is a parsed inbound complaint text.
type Report struct {
	From      string
	IssueType string
	Name      string
	Address   string
	Contact   string
	Details   string
}

// typeKeywords maps the structured format's type word to the issue type.
var typeKeywords = map[string]string{
	"OUTAGE":   "Power Outage",
	"POWER":    "Power Outage",
	"BROWNOUT": "Power Outage",
	"BILLING":  "Billing",
	"BILL":     "Billing",
	"METER":    "Billing",
	"SERVICE":  "Service",
	"AGENT":    "Service",
}

// Parse decodes an inbound message body. from is the sender's number and
// doubles as the contact fallback.
func Parse(from, body string) (*Report, error) {
	text := strings.TrimSpace(body)
	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "ILECO") {
		return nil, ErrNotComplaint
	}
	rest := strings.TrimSpace(text[len("ILECO"):])
	if rest == "" {
		return nil, errors.New("empty complaint text")
	}

	// Structured: first word is a type keyword, fields are pipe-separated.
	firstWord, tail := splitWord(rest)
	if issueType, ok := typeKeywords[strings.ToUpper(firstWord)]; ok && strings.Contains(tail, "|") {
		parts := strings.Split(tail, "|")
		r := &Report{From: from, IssueType: issueType, Contact: from}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) > 0 {
			r.Name = parts[0]
		}
		if len(parts) > 1 {
			r.Address = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			r.Contact = parts[2]
		}
		if len(parts) > 3 {
			r.Details = strings.Join(parts[3:], " | ")
		}
		if r.Details == "" {
			r.Details = issueType + " reported via SMS"
		}
		return r, nil
	}

	// Free-form: route by detected issue type.
	return &Report{
		From:      from,
		IssueType: detectedIssueType(rest),
		Contact:   from,
		Details:   rest,
	}, nil
}

// detectedIssueType maps the classifier's routing labels onto the stored
// issue type spellings.
func detectedIssueType(text string) string {
	switch classify.DetectIssueType(text) {
	case "BILLING":
		return "Billing"
	case "SERVICE":
		return "Service"
	default:
		return "Power Outage"
	}
}

func splitWord(s string) (first, rest string) {
	fields := strings.SplitN(s, " ", 2)
	first = fields[0]
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}
	return first, rest
}
