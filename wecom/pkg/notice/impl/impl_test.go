package impl

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"qywxbot/tools/logger"
	"qywxbot/wecom/pkg/message"
	"qywxbot/wecom/pkg/notice"
	"qywxbot/wecom/pkg/webhook"
	"qywxbot/wecom/pkg/wxerr"
)

type fakeClient struct {
	mu       sync.Mutex
	sent     []*message.Payload
	uploads  []string
	fetched  []string
	result   *webhook.Result
	sendErr  error
	uploadID string
	upErr    error
	image    []byte
}

func (f *fakeClient) Send(_ context.Context, p *message.Payload) (*webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &webhook.Result{ErrCode: 0, ErrMsg: "ok"}, nil
}

func (f *fakeClient) Upload(_ context.Context, path string, kind message.MediaKind) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, string(kind)+":"+path)
	return f.uploadID, f.upErr
}

func (f *fakeClient) Fetch(_ context.Context, url string, _ int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	return f.image, nil
}

func newTestImpl(f *fakeClient) *NoticeImpl {
	return New(f, message.DefaultLimits(), logger.NewLoggerWithWriter("error", io.Discard))
}

func TestSendTextDispatches(t *testing.T) {
	f := &fakeClient{}
	res, err := newTestImpl(f).SendText(context.Background(), &notice.TextRequest{Content: "hello", MentionedList: []string{"@all"}})
	if err != nil || !res.OK() {
		t.Fatalf("unexpected result: %+v %v", res, err)
	}
	if len(f.sent) != 1 || f.sent[0].Text.MentionedList[0] != "@all" {
		t.Fatalf("unexpected payloads: %+v", f.sent)
	}
}

func TestValidationErrorSkipsSend(t *testing.T) {
	f := &fakeClient{}
	svc := newTestImpl(f)
	ctx := context.Background()

	if _, err := svc.SendNews(ctx, &notice.NewsRequest{}); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	card := &notice.TemplateCardRequest{CardType: message.CardNewsNotice, MainTitle: "X", CardActionType: 1, CardActionURL: "https://example.com"}
	if _, err := svc.SendTemplateCard(ctx, card); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("news_notice without image should fail, got %v", err)
	}
	if len(f.sent) != 0 {
		t.Fatalf("nothing should be sent, got %d", len(f.sent))
	}
}

func TestRemoteRejectionPassesThrough(t *testing.T) {
	f := &fakeClient{result: &webhook.Result{ErrCode: 93000, ErrMsg: "invalid webhook url"}}
	res, err := newTestImpl(f).SendMarkdown(context.Background(), &notice.MarkdownRequest{Content: "# hi"})
	if err != nil {
		t.Fatalf("remote rejection should not be an error: %v", err)
	}
	if res.ErrCode != 93000 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSendFailureNormalized(t *testing.T) {
	f := &fakeClient{sendErr: wxerr.Transport(nil, "send request timed out after 60s").WithTimeout()}
	res, err := newTestImpl(f).SendMarkdownV2(context.Background(), &notice.MarkdownRequest{Content: "# hi"})
	if err != nil {
		t.Fatalf("transport failure should be a result, got %v", err)
	}
	if res.ErrCode != -1 || res.Failure != wxerr.KindTransport {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.sent[0].MsgType != "markdown" {
		t.Fatalf("markdown_v2 must be sent as markdown, got %s", f.sent[0].MsgType)
	}
}

func TestSendFileUploadFailureAborts(t *testing.T) {
	upErr := wxerr.NotFound("file not found: /tmp/none.pdf")
	f := &fakeClient{upErr: upErr}
	_, err := newTestImpl(f).SendFile(context.Background(), &notice.FileRequest{FilePath: "/tmp/none.pdf"})
	if err != upErr {
		t.Fatalf("upload error should be returned unchanged, got %v", err)
	}
	if len(f.sent) != 0 {
		t.Fatalf("send should not happen after failed upload")
	}
}

func TestSendVoiceUploadsThenSends(t *testing.T) {
	f := &fakeClient{uploadID: "VOICE_1"}
	svc := newTestImpl(f)
	if _, err := svc.SendVoice(context.Background(), &notice.VoiceRequest{VoicePath: "/tmp/a.amr"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.uploads) != 1 || f.uploads[0] != "voice:/tmp/a.amr" {
		t.Fatalf("unexpected uploads: %v", f.uploads)
	}
	if f.sent[0].Voice.MediaID != "VOICE_1" {
		t.Fatalf("unexpected payload: %+v", f.sent[0])
	}

	if _, err := svc.SendFile(context.Background(), &notice.FileRequest{MediaID: "FILE_1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.uploads) != 1 || f.sent[1].File.MediaID != "FILE_1" {
		t.Fatalf("existing media_id should skip upload")
	}
}

func TestSendTemplateCard(t *testing.T) {
	f := &fakeClient{}
	req := &notice.TemplateCardRequest{
		CardType:       message.CardTextNotice,
		MainTitle:      "辣椒价格预警",
		MainTitleDesc:  "价格波动较大",
		EmphasisTitle:  "+15%",
		CardActionType: 1,
		CardActionURL:  "https://example.com/main",
	}
	if _, err := newTestImpl(f).SendTemplateCard(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	card := f.sent[0].TemplateCard
	if card.MainTitle.Title != "辣椒价格预警" || card.EmphasisContent.Title != "+15%" || card.CardAction.URL != "https://example.com/main" {
		t.Fatalf("unexpected card: %+v", card)
	}
	if card.Source != nil || card.CardImage != nil {
		t.Fatalf("empty groups should be omitted: %+v", card)
	}
}

func TestSendTemplateCardRequiresAction(t *testing.T) {
	f := &fakeClient{}
	_, err := newTestImpl(f).SendTemplateCard(context.Background(), &notice.TemplateCardRequest{CardType: message.CardTextNotice, MainTitle: "X"})
	if !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("missing card action should fail, got %v", err)
	}
}

func TestNotice(t *testing.T) {
	f := &fakeClient{image: []byte("hello")}
	svc := newTestImpl(f)
	ctx := context.Background()

	if _, err := svc.Notice(ctx, &notice.NoticeRequest{Msg: "hi", MentionedMobileList: []string{"13800001111"}}); err != nil {
		t.Fatalf("text notice: %v", err)
	}
	if f.sent[0].MsgType != "text" || f.sent[0].Text.MentionedMobileList[0] != "13800001111" {
		t.Fatalf("default type should be text: %+v", f.sent[0])
	}

	if _, err := svc.Notice(ctx, &notice.NoticeRequest{Msg: "https://example.com/a.png", MsgType: "image"}); err != nil {
		t.Fatalf("image url notice: %v", err)
	}
	if len(f.fetched) != 1 || f.sent[1].Image.Base64 != "aGVsbG8=" {
		t.Fatalf("url image should be downloaded: %v %+v", f.fetched, f.sent[1])
	}

	raw, _ := base64.StdEncoding.DecodeString("aGVsbG8=")
	path := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := svc.Notice(ctx, &notice.NoticeRequest{Msg: path, MsgType: "image"}); err != nil {
		t.Fatalf("image path notice: %v", err)
	}
	if len(f.fetched) != 1 || f.sent[2].Image.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("local image should be read from disk: %+v", f.sent[2])
	}

	if _, err := svc.Notice(ctx, &notice.NoticeRequest{Msg: filepath.Join(t.TempDir(), "x.png"), MsgType: "image"}); !wxerr.Is(err, wxerr.KindNotFound) {
		t.Fatalf("missing image should be not found, got %v", err)
	}
	if _, err := svc.Notice(ctx, &notice.NoticeRequest{Msg: "x", MsgType: "news"}); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("unsupported type should fail, got %v", err)
	}
}

func TestUploadAndFormat(t *testing.T) {
	f := &fakeClient{uploadID: "M1"}
	svc := newTestImpl(f)
	ctx := context.Background()

	resp, err := svc.Upload(ctx, &notice.UploadRequest{FilePath: "/tmp/a.pdf", MediaType: "file"})
	if err != nil || resp.MediaID != "M1" || resp.MediaType != "file" {
		t.Fatalf("unexpected upload response: %+v %v", resp, err)
	}
	if _, err := svc.Upload(ctx, &notice.UploadRequest{MediaType: "file"}); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("missing path should fail, got %v", err)
	}

	if len(svc.ListSupportedKinds(ctx)) != 8 {
		t.Fatalf("expected 8 kinds")
	}
	spec, err := svc.GetFormatSpec(ctx, &notice.FormatRequest{MessageType: "news"})
	if err != nil || spec.Limits["max_articles"] != 8 {
		t.Fatalf("unexpected spec: %+v %v", spec, err)
	}
	if _, err := svc.GetFormatSpec(ctx, &notice.FormatRequest{MessageType: "video"}); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("unknown type should fail, got %v", err)
	}
}
