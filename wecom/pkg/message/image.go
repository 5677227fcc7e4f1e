package message

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"strings"

	"qywxbot/wecom/pkg/wxerr"
)

// BuildImage 构造图片消息，依次尝试 URL、本地文件、base64 三种来源
func (b *Builder) BuildImage(ctx context.Context, src ImageSource) (*Payload, error) {
	data, err := b.loadImage(ctx, src)
	if err != nil {
		return nil, err
	}
	if n := int64(len(data)); n > b.limits.ImageBytes {
		return nil, bytesExceeded("image", n, b.limits.ImageBytes)
	}

	digest := src.MD5
	if digest == "" {
		digest = MD5Hex(data)
	}
	return &Payload{
		MsgType: KindImage.WireType(),
		Image: &ImageBody{
			Base64: base64.StdEncoding.EncodeToString(data),
			MD5:    digest,
		},
	}, nil
}

func (b *Builder) loadImage(ctx context.Context, src ImageSource) ([]byte, error) {
	switch {
	case src.URL != "":
		if b.fetcher == nil {
			return nil, wxerr.Config("no image fetcher configured")
		}
		data, err := b.fetcher.Fetch(ctx, src.URL, b.limits.ImageBytes)
		if err != nil {
			if wxerr.KindOf(err) != "" {
				return nil, err
			}
			return nil, wxerr.Transport(err, "failed to download image from %s", src.URL)
		}
		return data, nil
	case src.Path != "":
		return readLocalImage(src.Path, b.limits.ImageBytes)
	case src.Base64 != "":
		// 兼容 data URI 前缀和换行
		raw := src.Base64
		if i := strings.Index(raw, "base64,"); i >= 0 && strings.HasPrefix(raw, "data:") {
			raw = raw[i+len("base64,"):]
		}
		raw = strings.Join(strings.Fields(raw), "")
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, wxerr.Validation("invalid image_base64: %v", err)
		}
		return data, nil
	default:
		return nil, wxerr.Validation("one of image_url, image_path or image_base64 is required")
	}
}

// readLocalImage 读取前先检查文件大小，避免把超大文件读进内存
func readLocalImage(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, wxerr.NotFound("file not found: %s", path)
		}
		return nil, wxerr.Validation("cannot access image file %s: %v", path, err)
	}
	if info.IsDir() {
		return nil, wxerr.Validation("image path is a directory: %s", path)
	}
	if info.Size() > limit {
		return nil, bytesExceeded("image", info.Size(), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wxerr.Validation("read image file %s: %v", path, err)
	}
	return data, nil
}

// MD5Hex 返回十六进制小写 md5 摘要
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
