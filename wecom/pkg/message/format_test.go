package message

import (
	"strings"
	"testing"

	"qywxbot/wecom/pkg/wxerr"
)

func TestListSupportedKinds(t *testing.T) {
	kinds := ListSupportedKinds()
	if len(kinds) != 8 {
		t.Fatalf("expected 8 kinds, got %d", len(kinds))
	}
	if kinds[2].Type != KindMarkdownV2 || kinds[2].Name == "" {
		t.Fatalf("markdown_v2 should be listed third, got %+v", kinds[2])
	}
	for _, k := range kinds {
		if k.Name == "" || k.Description == "" {
			t.Fatalf("kind %s missing name/description", k.Type)
		}
	}
}

func TestGetFormatSpec(t *testing.T) {
	limits := DefaultLimits()
	for _, k := range Kinds {
		spec, err := GetFormatSpec(string(k), limits)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if spec.RequiredParams == nil || spec.OptionalParams == nil || len(spec.Limitations) == 0 {
			t.Fatalf("%s: incomplete spec %+v", k, spec)
		}
	}

	spec, _ := GetFormatSpec("markdown_v2", limits)
	if spec.WireType != "markdown" {
		t.Fatalf("markdown_v2 wire type should be markdown, got %s", spec.WireType)
	}
	if spec.Limits["content_bytes"] != 4096 {
		t.Fatalf("unexpected limit: %v", spec.Limits)
	}
}

func TestGetFormatSpecUsesConfiguredLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.TextBytes = 1000
	spec, err := GetFormatSpec("text", limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.Join(spec.Limitations, ","), "1000") || spec.Limits["content_bytes"] != 1000 {
		t.Fatalf("configured limit not reflected: %+v", spec)
	}

	spec, _ = GetFormatSpec("voice", DefaultLimits())
	if !strings.Contains(spec.Limitations[0], "2MB") {
		t.Fatalf("voice limit should render as 2MB, got %s", spec.Limitations[0])
	}
}

func TestGetFormatSpecUnknown(t *testing.T) {
	if _, err := GetFormatSpec("video", DefaultLimits()); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWireType(t *testing.T) {
	if KindMarkdownV2.WireType() != "markdown" || KindTemplate.WireType() != "template_card" {
		t.Fatalf("unexpected wire types")
	}
}
