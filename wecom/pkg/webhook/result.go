package webhook

import (
	"bytes"
	"encoding/json"
	"errors"

	"qywxbot/wecom/pkg/wxerr"
)

// Result 企业微信返回的原始结果。errcode 非 0 也是正常结果，由调用方判断
type Result struct {
	ErrCode int            `json:"errcode"`
	ErrMsg  string         `json:"errmsg"`
	Fields  map[string]any `json:"fields,omitempty"`
	// Failure 本地失败时的错误类别，远端返回的结果为空
	Failure wxerr.Kind `json:"failure,omitempty"`
}

// OK 是否发送成功
func (r *Result) OK() bool {
	return r != nil && r.ErrCode == 0 && r.Failure == ""
}

// Err 把非 0 的 errcode 转成 RemoteError
func (r *Result) Err() error {
	if r == nil || r.ErrCode == 0 {
		return nil
	}
	if r.Failure != "" {
		return &wxerr.Error{Kind: r.Failure, Message: r.ErrMsg}
	}
	return wxerr.Remote(r.ErrCode, r.ErrMsg)
}

// FailureResult 把本地失败统一成结果结构，errcode 固定为 -1
func FailureResult(err error) *Result {
	kind := wxerr.KindOf(err)
	if kind == "" {
		kind = wxerr.KindTransport
	}
	return &Result{
		ErrCode: -1,
		ErrMsg:  err.Error(),
		Failure: kind,
	}
}

type rawResult struct {
	result  *Result
	hasCode bool
	mediaID string
}

// decodeResult 解析响应体，数字保持原样，其余字段放进 Fields
func decodeResult(data []byte) (*rawResult, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("response body is null")
	}

	out := &rawResult{result: &Result{}}
	if v, ok := fields["errcode"]; ok {
		if n, ok := v.(json.Number); ok {
			if code, err := n.Int64(); err == nil {
				out.result.ErrCode = int(code)
				out.hasCode = true
			}
		}
		delete(fields, "errcode")
	}
	if v, ok := fields["errmsg"].(string); ok {
		out.result.ErrMsg = v
		delete(fields, "errmsg")
	}
	if v, ok := fields["media_id"].(string); ok {
		out.mediaID = v
	}
	if len(fields) > 0 {
		out.result.Fields = fields
	}
	return out, nil
}
