// Package inbound is the terminal surface of the verification flow: a prompt
// loop that drives a flow session and renders its state after every change.
package inbound

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/verification/entity"
	"github.com/campusconnect/loginflow/internal/verification/usecase"
)

// CLI drives verification flows from a line-based terminal session.
type CLI struct {
	uc  *usecase.Usecase
	in  *bufio.Scanner
	out io.Writer
}

func NewCLI(uc *usecase.Usecase, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		uc:  uc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run is the top-level prompt loop. It returns when the user quits or the
// input stream ends.
func (c *CLI) Run(ctx context.Context) error {
	c.printf("CampusConnect\n")
	c.printf("commands: signup, login, reset, quit\n")

	for {
		line, ok := c.prompt("> ")
		if !ok {
			return nil
		}

		switch line {
		case "signup":
			c.runFlow(ctx, entity.PurposeSignup)
		case "login":
			c.runFlow(ctx, entity.PurposeLogin)
		case "reset":
			c.runFlow(ctx, entity.PurposePasswordReset)
		case "quit", "exit", "q":
			return nil
		case "":
		default:
			c.printf("unknown command %q\n", line)
		}
	}
}

func (c *CLI) runFlow(ctx context.Context, purpose entity.ChallengePurpose) {
	f := c.uc.NewFlow(purpose)
	defer f.Close()

	ctx = instrument.WithCorrelationID(ctx, f.ID())

	done := make(chan *entity.Session, 1)
	f.OnComplete(func(s *entity.Session) { done <- s })

	for {
		select {
		case session := <-done:
			c.printf("\nYou are signed in as %s (user %d), session valid until %s.\n",
				session.Email, session.UserID, session.ExpiresAt.Format("15:04:05"))
			return
		default:
		}

		switch f.Step() {
		case entity.StepCollectingCredentials:
			if !c.stepCredentials(ctx, f) {
				return
			}
		case entity.StepChallengeIssued:
			if !c.stepChallenge(ctx, f) {
				return
			}
		case entity.StepCompleted:
			// Success shown; the completion callback fires after its delay.
			c.printf("Verified. Signing you in...\n")
			session := <-done
			c.printf("\nYou are signed in as %s (user %d), session valid until %s.\n",
				session.Email, session.UserID, session.ExpiresAt.Format("15:04:05"))
			return
		default:
			return
		}
	}
}

// stepCredentials renders the form and handles one command. Returns false when
// the user cancels the flow.
func (c *CLI) stepCredentials(ctx context.Context, f *usecase.Flow) bool {
	c.renderForm(f)

	line, ok := c.prompt(fmt.Sprintf("[%s] ", f.Purpose()))
	if !ok {
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "set":
		field, value, found := strings.Cut(rest, " ")
		if !found && field == "" {
			c.printf("usage: set <field> <value>\n")
			return true
		}
		f.EditField(ctx, field, value)
	case "attach":
		c.attach(ctx, f, strings.TrimSpace(rest))
	case "detach":
		f.RemoveAttachment(ctx)
	case "submit":
		f.SubmitCredentials(ctx)
		if msg := f.FlowError(); msg != "" {
			c.printf("!! %s\n", msg)
		}
	case "cancel":
		return false
	case "":
	default:
		c.printf("commands: set <field> <value>, attach <path>, detach, submit, cancel\n")
	}

	return true
}

// stepChallenge renders the code cells and handles one command. Digits feed
// the focused cell directly; longer digit strings are treated as a paste.
func (c *CLI) stepChallenge(ctx context.Context, f *usecase.Flow) bool {
	c.renderCode(f)

	line, ok := c.prompt("code> ")
	if !ok {
		return false
	}

	switch {
	case line == "submit":
		f.SubmitCode(ctx)
		if msg := f.FlowError(); msg != "" {
			c.printf("!! %s\n", msg)
		}
	case line == "resend":
		if remaining := f.Throttle().SecondsRemaining(); remaining > 0 {
			c.printf("resend available in %ds\n", remaining)
			return true
		}
		f.Resend(ctx)
		if msg := f.FlowError(); msg != "" {
			c.printf("!! %s\n", msg)
		}
	case line == "back":
		f.Back(ctx)
	case line == "b":
		f.Code().Backspace()
	case line == "<":
		f.Code().Left()
	case line == ">":
		f.Code().Right()
	case line == "cancel":
		return false
	case isDigits(line) && len(line) == 1:
		f.Code().Type(rune(line[0]))
	case len(line) > 1 && strings.ContainsAny(line, "0123456789"):
		f.Code().Paste(line)
	case line == "":
	default:
		c.printf("commands: <digits>, b, <, >, submit, resend, back, cancel\n")
	}

	return true
}

func (c *CLI) attach(ctx context.Context, f *usecase.Flow, path string) {
	if path == "" {
		c.printf("usage: attach <path>\n")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.printf("!! cannot read %s: %v\n", path, err)
		return
	}

	f.StageAttachment(ctx, entity.Attachment{
		Name: filepath.Base(path),
		MIME: mime.TypeByExtension(filepath.Ext(path)),
		Size: int64(len(data)),
		Data: data,
	})
}

func (c *CLI) renderForm(f *usecase.Flow) {
	draft := f.Draft()
	errs := f.FieldErrors()

	c.printf("\n-- %s --\n", f.Purpose())
	c.renderField(entity.FieldEmail, draft.Email, errs)

	if f.Purpose() == entity.PurposeSignup {
		c.renderField(entity.FieldPassword, maskSecret(draft.Password), errs)
		c.renderField(entity.FieldConfirmPassword, maskSecret(draft.ConfirmPassword), errs)
		c.renderField(entity.FieldFirstName, draft.FirstName, errs)
		c.renderField(entity.FieldLastName, draft.LastName, errs)
		c.renderField(entity.FieldPhone, draft.Phone, errs)
		c.renderField(entity.FieldBio, draft.Bio, errs)
		c.renderField(entity.FieldTermsAccepted, fmt.Sprintf("%t", draft.TermsAccepted), errs)

		attVal := "(none)"
		if att := draft.Attachment; att != nil {
			attVal = fmt.Sprintf("%s (%d bytes)", att.Name, att.Size)
		}
		c.renderField(entity.FieldAttachment, attVal, errs)
	}

	// Leftover errors on fields not rendered above, shown so nothing hides.
	known := map[string]bool{
		entity.FieldEmail: true, entity.FieldPassword: true, entity.FieldConfirmPassword: true,
		entity.FieldFirstName: true, entity.FieldLastName: true, entity.FieldPhone: true,
		entity.FieldBio: true, entity.FieldTermsAccepted: true, entity.FieldAttachment: true,
	}
	var extra []string
	for field := range errs {
		if !known[field] {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)
	for _, field := range extra {
		c.printf("  %-16s !! %s\n", field, errs[field])
	}
}

func (c *CLI) renderField(field, value string, errs map[string]string) {
	c.printf("  %-16s %s", field, value)
	if msg := errs[field]; msg != "" {
		c.printf("   !! %s", msg)
	}
	c.printf("\n")
}

func (c *CLI) renderCode(f *usecase.Flow) {
	slots := f.Code().Slots()
	focus := f.Code().Focus()

	c.printf("\nEnter the code sent to %s\n  ", f.Draft().Email)
	for i, s := range slots {
		cell := " "
		if s != "" {
			cell = s
		}
		if i == focus {
			c.printf("[%s]", cell)
		} else {
			c.printf(" %s ", cell)
		}
	}
	c.printf("\n")

	if dev := f.DevCode(); dev != "" {
		c.printf("  (dev code: %s)\n", dev)
	}
	if remaining := f.Throttle().SecondsRemaining(); remaining > 0 {
		c.printf("  resend available in %ds\n", remaining)
	}
}

func (c *CLI) prompt(p string) (string, bool) {
	c.printf("%s", p)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("*", len(s))
}
