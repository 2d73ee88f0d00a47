package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/crate/internal/shared"
)

// Prompter asks the user for missing input. Commands fall back to flags when it is not interactive.
type Prompter interface {
	Interactive() bool
	PlaylistForm(name, cover *string) error
	Confirm(title string) (bool, error)
	Select(title string, options []string) (int, error)
}

// huhPrompter renders prompts with huh on the controlling terminal.
type huhPrompter struct{}

// Interactive reports whether stdin is a terminal.
func (huhPrompter) Interactive() bool {
	stat, err := os.Stdin.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

func (huhPrompter) PlaylistForm(name, cover *string) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Playlist name").
				Value(name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Cover image URL").
				Description("Leave empty to use a generated cover.").
				Placeholder("https://...").
				Value(cover).
				Validate(func(s string) error {
					if s != "" && !shared.HasURLScheme(s) {
						return fmt.Errorf("cover must be a URL")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return fmt.Errorf("run playlist form: %w", err)
	}
	return nil
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("run confirmation: %w", err)
	}
	return ok, nil
}

func (huhPrompter) Select(title string, options []string) (int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, label := range options {
		opts[i] = huh.NewOption(label, i)
	}

	var choice int
	err := huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(&choice).
		Run()
	if err != nil {
		return 0, fmt.Errorf("run selection: %w", err)
	}
	return choice, nil
}
