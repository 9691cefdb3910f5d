package agents

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/switchboard-ai/switchboard/account"
	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/model"
)

// SupportOptions configures a Support agent.
type SupportOptions struct {
	Name string
	// Priority orders the agent against other customer_support handlers.
	Priority int
	// TransactionLimit bounds how many ledger entries go into the prompt.
	TransactionLimit int
}

// Support handles account and technical support questions. It requires a
// user identity: the router skips it for anonymous requests, and Process
// rejects a missing user id defensively when invoked directly.
type Support struct {
	Base
	llm   model.Model
	store account.Store
	limit int
}

// NewSupport creates the support agent over an account backend.
func NewSupport(llm model.Model, store account.Store, optFns ...func(o *SupportOptions)) *Support {
	opts := SupportOptions{Name: "support_agent", Priority: 5, TransactionLimit: 10}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Support{
		Base: NewBase(core.Metadata{
			Name:           opts.Name,
			Description:    "Handles account and technical support issues",
			Intents:        []string{IntentCustomerSupport},
			Capabilities:   []string{"account_status", "transaction_history", "support_tickets", "service_status"},
			Priority:       opts.Priority,
			RequiresUserID: true,
		}),
		llm:   llm,
		store: store,
		limit: opts.TransactionLimit,
	}
}

const supportInstructions = `You are a helpful customer support agent. Use only the
account facts provided; never invent balances, transactions or statuses.
Respond in the language used by the user.`

// Process implements core.Agent.
func (s *Support) Process(reqCtx *core.RequestContext) (*core.Result, error) {
	start := time.Now()
	if reqCtx.UserID == "" {
		return nil, errors.New("user id is required for support requests")
	}

	acct, err := s.store.Account(reqCtx.Context, reqCtx.UserID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			res := core.NewResult(s.Name(), "I couldn't find an account for your user id. Please verify your credentials or contact us directly.")
			res.SetMeta("confidence", 0.2)
			res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
			return res, nil
		}
		return nil, fmt.Errorf("account lookup: %w", err)
	}

	transactions, err := s.store.Transactions(reqCtx.Context, reqCtx.UserID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("transaction lookup: %w", err)
	}
	status, err := s.store.ServiceStatus(reqCtx.Context)
	if err != nil {
		return nil, fmt.Errorf("service status: %w", err)
	}

	resp, err := s.llm.Generate(reqCtx.Context, model.Request{
		Instructions: supportInstructions,
		Prompt:       buildSupportPrompt(acct, transactions, status, reqCtx.Message),
	})
	if err != nil {
		return nil, fmt.Errorf("support generation: %w", err)
	}

	reqCtx.Logger.Info("support answer produced",
		"agent", s.Name(),
		"request_id", reqCtx.RequestID,
		"account_status", acct.Status,
		"transactions", len(transactions),
	)

	res := core.NewResult(s.Name(), resp.Text)
	res.SetMeta("account_status", acct.Status)
	res.SetMeta("confidence", 0.85)
	res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

// OpenTicket files a support ticket for the request's user and returns a
// confirmation result. Exposed separately so transports can offer an explicit
// "open a ticket" action next to free-text support chat.
func (s *Support) OpenTicket(reqCtx *core.RequestContext, issue string) (*core.Result, error) {
	if reqCtx.UserID == "" {
		return nil, errors.New("user id is required to open a ticket")
	}
	ticket, err := s.store.CreateTicket(reqCtx.Context, reqCtx.UserID, issue)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	res := core.NewResult(s.Name(), fmt.Sprintf("Your support ticket %s has been created. We'll follow up shortly.", ticket.ID))
	res.SetMeta("ticket_id", ticket.ID)
	res.SetMeta("ticket_status", ticket.Status)
	return res, nil
}

func buildSupportPrompt(acct *account.Account, transactions []account.Transaction, status, message string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Account: %s (%s)\nStatus: %s\nBalance: %.2f\n", acct.Name, acct.UserID, acct.Status, acct.Balance)
	fmt.Fprintf(&sb, "Service status: %s\n", status)
	if len(transactions) > 0 {
		sb.WriteString("\nRecent transactions (newest first):\n")
		for _, t := range transactions {
			fmt.Fprintf(&sb, "- %s  %.2f  %s\n", t.Timestamp.Format("2006-01-02"), t.Amount, t.Description)
		}
	}
	fmt.Fprintf(&sb, "\nUser message: %q\n", message)
	return sb.String()
}

var _ core.Agent = (*Support)(nil)
