package fixture

import (
	"time"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func demoUser() domain.User {
	return domain.User{ID: 1, Username: DemoUsername, FirstName: "John", LastName: "Smith", Email: "john.smith@example.com"}
}

func seedAgents() []domain.Agent {
	john := demoUser()
	return []domain.Agent{
		{
			ID:                1,
			User:              &john,
			EmployeeID:        "EMP12345",
			Department:        "Claims",
			HireDate:          "2023-01-15",
			AvgCoverageScore:  8.5,
			TotalCallsHandled: 120,
			Performance: &domain.AgentPerformance{
				SentimentScores:  domain.SentimentScores{Positive: 65, Neutral: 25, Negative: 10},
				ComplianceRate:   92,
				AvgCallDuration:  345,
				KeyStrengths:     []string{"Customer empathy", "Technical knowledge", "Problem resolution"},
				ImprovementAreas: []string{"Call efficiency", "Disclosure statements", "Upselling opportunities"},
			},
		},
		{
			ID:                2,
			User:              &domain.User{ID: 2, Username: "sarah_agent", FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@example.com"},
			EmployeeID:        "EMP12346",
			Department:        "Customer Service",
			HireDate:          "2022-08-03",
			AvgCoverageScore:  9.1,
			TotalCallsHandled: 210,
			Performance: &domain.AgentPerformance{
				SentimentScores:  domain.SentimentScores{Positive: 72, Neutral: 20, Negative: 8},
				ComplianceRate:   97,
				AvgCallDuration:  298,
				KeyStrengths:     []string{"Clear explanations", "Compliance"},
				ImprovementAreas: []string{"Hold times"},
			},
		},
		{
			ID:                3,
			User:              &domain.User{ID: 3, Username: "mike_agent", FirstName: "Michael", LastName: "Brown", Email: "michael.brown@example.com"},
			EmployeeID:        "EMP12347",
			Department:        "Policy Sales",
			HireDate:          "2023-06-21",
			AvgCoverageScore:  7.2,
			TotalCallsHandled: 85,
			Performance: &domain.AgentPerformance{
				SentimentScores:  domain.SentimentScores{Positive: 48, Neutral: 32, Negative: 20},
				ComplianceRate:   84,
				AvgCallDuration:  412,
				KeyStrengths:     []string{"Product knowledge"},
				ImprovementAreas: []string{"Identity verification", "Call efficiency"},
			},
		},
		{
			ID:                4,
			User:              &domain.User{ID: 4, Username: "emily_agent", FirstName: "Emily", LastName: "Davis", Email: "emily.davis@example.com"},
			EmployeeID:        "EMP12348",
			Department:        "Claims",
			HireDate:          "2021-11-02",
			AvgCoverageScore:  8.8,
			TotalCallsHandled: 305,
		},
		{
			ID:                5,
			EmployeeID:        "EMP12349",
			Department:        "Billing",
			HireDate:          "2024-02-12",
			AvgCoverageScore:  6.4,
			TotalCallsHandled: 32,
		},
	}
}

func seedRecordings() []domain.CallRecording {
	return []domain.CallRecording{
		{ID: 1, Title: "Customer Complaint - Billing Issue", Agent: domain.RecordingAgent{ID: 1, Name: "John Smith", Department: "Claims"}, CustomerPhone: "555-123-4567", DurationSeconds: 345, UploadedAt: ts("2025-03-24T10:30:00Z"), Status: domain.RecordingCompleted, Sentiment: domain.SentimentNegative, FileURL: "/media/call_recordings/billing_issue.mp3"},
		{ID: 2, Title: "Policy Renewal Inquiry", Agent: domain.RecordingAgent{ID: 2, Name: "Sarah Johnson", Department: "Customer Service"}, CustomerPhone: "555-987-6543", DurationSeconds: 512, UploadedAt: ts("2025-03-24T09:15:00Z"), Status: domain.RecordingCompleted, Sentiment: domain.SentimentPositive, FileURL: "/media/call_recordings/policy_renewal.mp3"},
		{ID: 3, Title: "Claim Status Follow-up", Agent: domain.RecordingAgent{ID: 4, Name: "Emily Davis", Department: "Claims"}, CustomerPhone: "555-246-8135", DurationSeconds: 188, UploadedAt: ts("2025-03-23T16:45:00Z"), Status: domain.RecordingCompleted, Sentiment: domain.SentimentNeutral, FileURL: "/media/call_recordings/claim_followup.mp3"},
		{ID: 4, Title: "New Policy Quote", Agent: domain.RecordingAgent{ID: 3, Name: "Michael Brown", Department: "Policy Sales"}, CustomerPhone: "555-369-2580", DurationSeconds: 624, UploadedAt: ts("2025-03-23T14:20:00Z"), Status: domain.RecordingInProgress, Sentiment: domain.SentimentPending},
		{ID: 5, Title: "Address Change Request", Agent: domain.RecordingAgent{ID: 1, Name: "John Smith", Department: "Claims"}, CustomerPhone: "555-147-2589", DurationSeconds: 143, UploadedAt: ts("2025-03-22T11:05:00Z"), Status: domain.RecordingCompleted, Sentiment: domain.SentimentPositive, FileURL: "/media/call_recordings/address_change.mp3"},
		{ID: 6, Title: "Premium Increase Complaint", Agent: domain.RecordingAgent{ID: 2, Name: "Sarah Johnson", Department: "Customer Service"}, CustomerPhone: "555-753-9514", DurationSeconds: 431, UploadedAt: ts("2025-03-21T15:40:00Z"), Status: domain.RecordingCompleted, Sentiment: domain.SentimentNegative, FileURL: "/media/call_recordings/premium_increase.mp3"},
	}
}

const billingTranscript = `Agent: Thank you for calling, this call may be recorded for quality purposes. My name is John, how can I help you today?
Customer: I was charged twice for my premium this month.
Agent: I'm sorry to hear that. Can you confirm your policy number and date of birth?
Customer: Sure, it's POL-88231, March 3rd 1985.
Agent: Thank you. I can see the duplicate charge and I've submitted a refund, which should arrive within five business days.
Customer: Fine, but this is the second time this has happened.`

func seedAnalyses() map[int]domain.CallAnalysis {
	return map[int]domain.CallAnalysis{
		1: {
			ID:                1,
			CallRecordingID:   1,
			AgentID:           1,
			TranscriptionText: billingTranscript,
			AgentText:         "Thank you for calling... I've submitted a refund, which should arrive within five business days.",
			CustomerText:      "I was charged twice for my premium this month... this is the second time this has happened.",
			Sentiment:         domain.SentimentNegative,
			KeyIssues:         []string{"Billing discrepancy", "Repeat issue"},
			CoverageScore:     7.5,
			ConfidenceScore:   0.92,
			ComplianceCheck:   domain.ComplianceCheck{IdentityVerification: true, DisclosureStatements: false, CallRecordingNotice: true, DataProtection: true},
			CreatedAt:         ts("2025-03-24T10:36:00Z"),
		},
		2: {
			ID:                2,
			CallRecordingID:   2,
			AgentID:           2,
			TranscriptionText: "Agent: Good morning, this call is recorded. How may I help?\nCustomer: I'd like to renew my home policy.\nAgent: Happy to help, let me verify your identity first.",
			Sentiment:         domain.SentimentPositive,
			KeyIssues:         []string{"Policy renewal"},
			CoverageScore:     9.2,
			ConfidenceScore:   0.95,
			ComplianceCheck:   domain.ComplianceCheck{IdentityVerification: true, DisclosureStatements: true, CallRecordingNotice: true, DataProtection: true},
			CreatedAt:         ts("2025-03-24T09:25:00Z"),
		},
		3: {
			ID:                3,
			CallRecordingID:   3,
			AgentID:           4,
			TranscriptionText: "Agent: Hello, you're through to claims.\nCustomer: Checking on claim CLM-1142.\nAgent: It's with the assessor and should close this week.",
			Sentiment:         domain.SentimentNeutral,
			KeyIssues:         []string{"Claim processing delay"},
			CoverageScore:     8.1,
			ConfidenceScore:   0.88,
			ComplianceCheck:   domain.ComplianceCheck{IdentityVerification: true, DisclosureStatements: true, CallRecordingNotice: false, DataProtection: true},
			CreatedAt:         ts("2025-03-23T16:52:00Z"),
		},
		5: {
			ID:                5,
			CallRecordingID:   5,
			AgentID:           1,
			TranscriptionText: "Agent: This call may be recorded. How can I help?\nCustomer: I've moved house.\nAgent: Congratulations! I've updated your address.",
			Sentiment:         domain.SentimentPositive,
			KeyIssues:         []string{},
			CoverageScore:     8.9,
			ConfidenceScore:   0.97,
			ComplianceCheck:   domain.ComplianceCheck{IdentityVerification: true, DisclosureStatements: true, CallRecordingNotice: true, DataProtection: true},
			CreatedAt:         ts("2025-03-22T11:09:00Z"),
		},
		6: {
			ID:                6,
			CallRecordingID:   6,
			AgentID:           2,
			TranscriptionText: "Customer: Why did my premium go up 20%?\nAgent: Let me explain the factors in your renewal.",
			Sentiment:         domain.SentimentNegative,
			KeyIssues:         []string{"Premium increase", "Price sensitivity"},
			CoverageScore:     7.8,
			ConfidenceScore:   0.9,
			ComplianceCheck:   domain.ComplianceCheck{IdentityVerification: false, DisclosureStatements: true, CallRecordingNotice: true, DataProtection: true},
			CreatedAt:         ts("2025-03-21T15:48:00Z"),
		},
	}
}

func seedKeyIssues() []domain.KeyIssue {
	return []domain.KeyIssue{
		{Issue: "Billing discrepancy", Count: 24, Change: 12},
		{Issue: "Claim processing delay", Count: 18, Change: -5},
		{Issue: "Premium increase", Count: 15, Change: 8},
		{Issue: "Policy coverage questions", Count: 11, Change: 0},
	}
}

func seedPerformance() map[string]domain.PerformanceSummary {
	return map[string]domain.PerformanceSummary{
		"daily":   {CallsAnalyzed: 42, AvgSentiment: 7.2, ComplianceRate: 91, KeyIssues: 6, Trend: domain.TrendUp},
		"weekly":  {CallsAnalyzed: 287, AvgSentiment: 6.9, ComplianceRate: 89, KeyIssues: 17, Trend: domain.TrendNeutral},
		"monthly": {CallsAnalyzed: 1164, AvgSentiment: 7.4, ComplianceRate: 93, KeyIssues: 41, Trend: domain.TrendDown},
	}
}
