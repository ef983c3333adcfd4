package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/inklyn/docchat/internal/core/budget"
	"github.com/inklyn/docchat/internal/core/domain"
)

func newEmailForTest(store *storeFake, model *chatModelFake) *EmailUseCase {
	budgeter := budget.New(charSizer{}, budget.Config{DefaultBudget: 2000})
	return NewEmailUseCase(store, budgeter, model, "default-model", []string{"other-model"})
}

func TestDraftEmailWriteModeUsesDocumentContext(t *testing.T) {
	store := newStoreFake("s1")
	store.sessions["s1"].Documents = []domain.DocumentRecord{{
		SourceID: "d1",
		Filename: "report.txt",
		Status:   domain.IngestSuccess,
		Blocks: []domain.ExtractedBlock{
			{Ordinal: 0, Kind: domain.KindParagraph, Text: "Quarterly revenue grew by twelve percent.", CharCount: 41},
		},
	}}
	store.sessions["s1"].Turns = []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "earlier question"},
		{Role: domain.RoleAssistant, Text: "earlier answer"},
	}
	model := &chatModelFake{reply: "Subject: Q3 update"}
	uc := newEmailForTest(store, model)

	draft, err := uc.DraftEmail(context.Background(), "s1", domain.EmailRequest{
		Mode:         domain.EmailModeWrite,
		Requirements: "summarize the quarter for the board",
	})
	if err != nil {
		t.Fatalf("DraftEmail() error = %v", err)
	}
	if draft.Draft != "Subject: Q3 update" {
		t.Fatalf("draft = %q", draft.Draft)
	}

	msgs := model.gotPayload.Messages
	if len(msgs) != 2 {
		t.Fatalf("expected system + request only, got %d messages", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "Quarterly revenue grew") {
		t.Fatalf("system message missing document context: %q", msgs[0].Content)
	}
	if strings.Contains(msgs[0].Content, "earlier question") {
		t.Fatal("chat history leaked into the email payload")
	}
	if msgs[1].Role != domain.RoleUser || !strings.Contains(msgs[1].Content, "summarize the quarter for the board") {
		t.Fatalf("request message = %+v", msgs[1])
	}
	if !strings.Contains(msgs[1].Content, "Subject line") {
		t.Fatalf("write-mode template missing: %q", msgs[1].Content)
	}
}

func TestDraftEmailDoesNotAppendTurns(t *testing.T) {
	store := newStoreFake("s1")
	model := &chatModelFake{reply: "draft"}
	uc := newEmailForTest(store, model)

	if _, err := uc.DraftEmail(context.Background(), "s1", domain.EmailRequest{
		Mode:         domain.EmailModeWrite,
		Requirements: "a short note",
	}); err != nil {
		t.Fatalf("DraftEmail() error = %v", err)
	}
	if got := len(store.sessions["s1"].Turns); got != 0 {
		t.Fatalf("expected no turns recorded, got %d", got)
	}
}

func TestDraftEmailReplyModeIncludesOriginal(t *testing.T) {
	store := newStoreFake("s1")
	model := &chatModelFake{reply: "a reply"}
	uc := newEmailForTest(store, model)

	if _, err := uc.DraftEmail(context.Background(), "s1", domain.EmailRequest{
		Mode:          domain.EmailModeReply,
		OriginalEmail: "Could you send over the figures?",
		Instructions:  "keep it under three sentences",
	}); err != nil {
		t.Fatalf("DraftEmail() error = %v", err)
	}

	msgs := model.gotPayload.Messages
	if msgs[0].Content != "You are a professional email reply assistant." {
		t.Fatalf("system message = %q", msgs[0].Content)
	}
	request := msgs[len(msgs)-1].Content
	if !strings.Contains(request, "Could you send over the figures?") {
		t.Fatalf("request missing the original email: %q", request)
	}
	if !strings.Contains(request, "Additional instructions: keep it under three sentences") {
		t.Fatalf("request missing the extra instructions: %q", request)
	}
}

func TestDraftEmailReplyModeOmitsEmptyInstructions(t *testing.T) {
	store := newStoreFake("s1")
	model := &chatModelFake{reply: "a reply"}
	uc := newEmailForTest(store, model)

	if _, err := uc.DraftEmail(context.Background(), "s1", domain.EmailRequest{
		Mode:          domain.EmailModeReply,
		OriginalEmail: "See attached.",
	}); err != nil {
		t.Fatalf("DraftEmail() error = %v", err)
	}
	request := model.gotPayload.Messages[len(model.gotPayload.Messages)-1].Content
	if strings.Contains(request, "Additional instructions") {
		t.Fatalf("instructions section rendered without input: %q", request)
	}
}

func TestDraftEmailValidation(t *testing.T) {
	cases := []struct {
		name string
		req  domain.EmailRequest
	}{
		{"unknown mode", domain.EmailRequest{Mode: "forward"}},
		{"write without requirements", domain.EmailRequest{Mode: domain.EmailModeWrite, Requirements: "  "}},
		{"reply without original", domain.EmailRequest{Mode: domain.EmailModeReply}},
		{"model outside catalog", domain.EmailRequest{Mode: domain.EmailModeWrite, Requirements: "x", Model: "nope/model"}},
	}

	store := newStoreFake("s1")
	uc := newEmailForTest(store, &chatModelFake{})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.DraftEmail(context.Background(), "s1", tc.req)
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid-input kind, got %v", err)
			}
		})
	}
}

func TestDraftEmailUnknownSession(t *testing.T) {
	uc := newEmailForTest(newStoreFake(), &chatModelFake{})

	_, err := uc.DraftEmail(context.Background(), "missing", domain.EmailRequest{
		Mode:         domain.EmailModeWrite,
		Requirements: "anything",
	})
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session-not-found kind, got %v", err)
	}
}
