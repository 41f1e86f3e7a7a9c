// Package setup runs the interactive terminal swap form.
package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/swapquote/internal/domain"
	"github.com/vadiminshakov/swapquote/internal/services/validator"
	"github.com/vadiminshakov/swapquote/internal/session"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#D9534F", Dark: "#FF6B6B"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	quoteStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(1, 2)

	warnStyle = lipgloss.NewStyle().Foreground(warning).Bold(true)
	okStyle   = lipgloss.NewStyle().Foreground(special)
)

const (
	actionFrom   = "from"
	actionTo     = "to"
	actionAmount = "amount"
	actionSwap   = "swap"
	actionQuit   = "quit"

	settleTimeout = 2 * session.AmountDebounce
)

type iconChecker interface {
	Valid(ctx context.Context, url string) bool
}

// RunSwapForm drives s from the terminal until the user quits or ctx is done.
// The session must already be started.
func RunSwapForm(ctx context.Context, s *session.Session, icons iconChecker) error {
	views := s.Views().Subscribe()
	defer s.Views().Unsubscribe(views)
	notes := s.Notifications().Subscribe()
	defer s.Notifications().Unsubscribe(notes)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		view := s.View()
		render(ctx, view, drain(notes), icons)

		if len(view.Options) == 0 {
			fmt.Println(warnStyle.Render("No tokens available, nothing to quote."))
			return nil
		}

		var action string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("What next?").
					Options(
						huh.NewOption("Choose token to send", actionFrom),
						huh.NewOption("Choose token to receive", actionTo),
						huh.NewOption("Enter amount", actionAmount),
						huh.NewOption("Swap direction ↑↓", actionSwap),
						huh.NewOption("Quit", actionQuit),
					).
					Value(&action),
			),
		).Run()
		if err != nil {
			return err
		}

		switch action {
		case actionFrom, actionTo:
			currency := view.From
			if action == actionTo {
				currency = view.To
			}
			title := "Token to send"
			if action == actionTo {
				title = "Token to receive"
			}
			err = huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title(title).
						Options(tokenOptions(view.Options)...).
						Height(12).
						Value(&currency),
				),
			).Run()
			if err != nil {
				return err
			}
			if action == actionFrom {
				err = s.SelectFrom(currency)
			} else {
				err = s.SelectTo(currency)
			}
			if err != nil {
				return err
			}
		case actionAmount:
			amount := view.FromAmount
			err = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Amount to send").
						Placeholder("0.0").
						Value(&amount).
						Validate(amountValidator(view.FromAmount)),
				),
			).Run()
			if err != nil {
				return err
			}
			drain(views)
			s.EditAmount(amount)
			waitSettled(ctx, views)
		case actionSwap:
			s.SwapDirection()
		case actionQuit:
			return nil
		}
	}
}

func render(ctx context.Context, view domain.View, notes []domain.Notification, icons iconChecker) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TOKEN SWAP"))

	for _, n := range notes {
		fmt.Println(warnStyle.Render("! " + n.Message))
	}

	fmt.Println(quoteStyle.Render(formatSummary(view)))

	if icons == nil {
		return
	}
	for _, opt := range view.Options {
		if opt.Value != view.From && opt.Value != view.To {
			continue
		}
		if icons.Valid(ctx, opt.Icon) {
			fmt.Println(okStyle.Render(fmt.Sprintf("%s icon: %s", opt.Value, opt.Icon)))
		}
	}
}

// formatSummary renders the two sides of the quote and the unit rate.
func formatSummary(view domain.View) string {
	if view.Loading {
		return "Loading..."
	}

	side := func(label, currency, amount string) string {
		if currency == "" {
			currency = lipgloss.NewStyle().Foreground(subtle).Render("select token")
		}
		if amount == "" {
			amount = "0.0"
		}
		return fmt.Sprintf("%-5s %s %s", label, amount, currency)
	}

	var b strings.Builder
	b.WriteString(side("From", view.From, view.FromAmount))
	b.WriteString("\n")
	b.WriteString(side("To", view.To, view.ToAmount))
	if view.Rate != "" {
		b.WriteString(fmt.Sprintf("\n\n1 %s = %s %s", view.From, view.Rate, view.To))
	}
	return b.String()
}

func tokenOptions(opts []domain.TokenOption) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		out = append(out, huh.NewOption(fmt.Sprintf("%s (%s)", o.Label, o.Price), o.Value))
	}
	return out
}

// amountValidator reports the same rejections the session would raise for the edit.
func amountValidator(previous string) func(string) error {
	return func(raw string) error {
		v := validator.Validate(raw, previous)
		if v.Accepted {
			return nil
		}
		return fmt.Errorf("%s", v.Reason.Message())
	}
}

// waitSettled blocks until the session publishes an idle view after an amount edit.
func waitSettled(ctx context.Context, views chan domain.View) {
	timeout := time.NewTimer(settleTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timeout.C:
			return
		case v, ok := <-views:
			if !ok || v.Phase == domain.PhaseIdle {
				return
			}
		}
	}
}

func drain[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
