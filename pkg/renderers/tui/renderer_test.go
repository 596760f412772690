package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/testsupport"
)

// stubDriver replays scripted answers. Empty input answers fall back to the
// prompt default and answers rejected by the validator are recorded before the
// next one is used, like survey re-asking.
type stubDriver struct {
	inputs       []string
	selects      []string
	confirm      []bool
	infoMessages []string
	rejected     []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	for {
		if s.inputPos >= len(s.inputs) {
			return "", errors.New("no input scripted")
		}
		val := s.inputs[s.inputPos]
		s.inputPos++
		if val == "" {
			val = cfg.Default
		}
		if cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.rejected = append(s.rejected, err.Error())
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selects) {
		return -1, errors.New("no select scripted")
	}
	val := s.selects[s.selectPos]
	s.selectPos++
	idx := indexOf(cfg.Options, val)
	if idx < 0 {
		return -1, errors.New("scripted option " + val + " not offered: " + strings.Join(cfg.Options, ", "))
	}
	return idx, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRenderer_EditsRepeatablePanels(t *testing.T) {
	c := testsupport.MustContainer(t, testsupport.PanelContainer)
	driver := &stubDriver{
		inputs: []string{
			"2024-01-15",
			"2024-02-01",
			"Ada", "36",
			"", "Grace", "-1", "45",
			"Alan", "41",
			"Edsger", "72",
			"Late addition", "",
			"",
		},
		selects: []string{"Add Dates", "Continue", "Add Person", "Remove last Person", "Continue"},
	}
	renderer, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), c, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{
		"wrapper": map[string]any{
			"dates": []any{
				map[string]any{"when": "2024-01-15"},
				map[string]any{"when": "2024-02-01"},
			},
		},
		"people": []any{
			map[string]any{"fullName": "Ada", "age": 36.0},
			map[string]any{"fullName": "Grace", "age": 45.0},
			map[string]any{"fullName": "Alan", "age": 41.0},
			map[string]any{"fullName": "Edsger", "age": 72.0},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	wantRejected := []string{
		"This field is required.",
		"Value must be greater than or equal to 0.",
	}
	if diff := cmp.Diff(wantRejected, driver.rejected); diff != "" {
		t.Fatalf("rejected answers mismatch (-want +got):\n%s", diff)
	}

	if err := c.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	manager, _ := c.InstanceManager("instance-manager-6")
	if manager.Count() != 4 {
		t.Fatalf("expected 4 people after add and remove, got %d", manager.Count())
	}
	if driver.infoMessages[0] != "Panel container" {
		t.Fatalf("expected title first, got %q", driver.infoMessages[0])
	}
	if !contains(driver.infoMessages, "Person #5") {
		t.Fatalf("added instance must be announced: %v", driver.infoMessages)
	}
}

func TestRenderer_CheckboxAndOutputFormats(t *testing.T) {
	c := testsupport.MustContainer(t, testsupport.Prefilled)
	driver := &stubDriver{
		inputs:  []string{"", "", "", "", ""},
		confirm: []bool{false},
		selects: []string{"Continue"},
	}
	renderer, _ := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatPrettyText),
		WithTheme(Theme{PromptPrefix: "> "}),
		WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			delete(values, "unknown")
			return values, nil
		}),
	)

	out, err := renderer.Render(context.Background(), c, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"children[0].age=7",
		"children[0].name=Alan",
		"children[1].age=9",
		"children[1].name=Grace",
		"contact.email=ada@example.com",
		"newsletter=false",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if renderer.ContentType() != "text/plain" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
	if driver.prompts[0] != "> Email" {
		t.Fatalf("unexpected prompt %q", driver.prompts[0])
	}

	form, _ := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(OutputFormatFormURLEncoded))
	if got := flattenForm(map[string]any{"a": map[string]any{"b": "c"}, "l": []any{1, "x"}}); got != "a.b=c&l%5B0%5D=1&l%5B1%5D=x" {
		t.Fatalf("unexpected form encoding %q", got)
	}
	if form.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", form.ContentType())
	}
}

func TestRenderer_ReviewLoop(t *testing.T) {
	c := testsupport.MustContainer(t, testsupport.PanelContainer)
	if err := c.SetValue("text-input-8", "Ada"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := c.SetEnabled("panel-7", false); err != nil {
		t.Fatalf("set enabled: %v", err)
	}
	if err := c.SetValue("text-input-8", nil); err != nil {
		t.Fatalf("clear value: %v", err)
	}

	driver := &stubDriver{
		inputs: []string{
			"",
			"Grace", "", "Alan", "", "Edsger", "",
			"",
		},
		selects: []string{"Continue", "Continue"},
		confirm: []bool{false},
	}
	renderer, _ := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))

	if _, err := renderer.Render(context.Background(), c, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !contains(driver.infoMessages, "! fullName: This field is required.") {
		t.Fatalf("expected validation summary, got %v", driver.infoMessages)
	}
	if driver.confirmPos != 1 {
		t.Fatalf("expected one review prompt, got %d", driver.confirmPos)
	}
}

func TestRenderer_Aborted(t *testing.T) {
	c := testsupport.MustContainer(t, testsupport.PanelContainer)
	renderer, _ := New(WithPromptDriver(abortDriver{}))

	if _, err := renderer.Render(context.Background(), c, render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, c, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

type abortDriver struct{}

func (abortDriver) Input(context.Context, InputConfig) (string, error)   { return "", ErrAborted }
func (abortDriver) Confirm(context.Context, ConfirmConfig) (bool, error) { return false, ErrAborted }
func (abortDriver) Select(context.Context, SelectConfig) (int, error)    { return 0, ErrAborted }
func (abortDriver) Info(context.Context, string) error                   { return nil }

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
