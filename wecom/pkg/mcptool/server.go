// Package mcptool 把机器人操作注册为 MCP 工具，通过 stdio 提供给智能体宿主调用。
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"qywxbot/tools/logger"
	"qywxbot/wecom/pkg/message"
	"qywxbot/wecom/pkg/notice"
)

const ServerName = "qyweixin-bot"

type Server struct {
	svc      notice.Service
	logger   *logger.Logger
	mcp      *server.MCPServer
	tools    []mcp.Tool
	handlers map[string]server.ToolHandlerFunc
}

// NewServer 创建 MCP 服务并注册全部工具
func NewServer(svc notice.Service, version string, log *logger.Logger) *Server {
	s := &Server{
		svc:      svc,
		logger:   log,
		mcp:      server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false), server.WithRecovery()),
		handlers: make(map[string]server.ToolHandlerFunc),
	}

	s.add(textTool(), handle(s, svc.SendText))
	s.add(markdownTool(), handle(s, svc.SendMarkdown))
	s.add(markdownV2Tool(), handle(s, svc.SendMarkdownV2))
	s.add(imageTool(), handle(s, svc.SendImage))
	s.add(newsTool(), handle(s, svc.SendNews))
	s.add(fileTool(), handle(s, svc.SendFile))
	s.add(voiceTool(), handle(s, svc.SendVoice))
	s.add(templateCardTool(), handle(s, svc.SendTemplateCard))
	s.add(uploadMediaTool(), handle(s, svc.Upload))
	s.add(listMessageTypesTool(), handle(s, func(ctx context.Context, _ *struct{}) ([]message.KindInfo, error) {
		return svc.ListSupportedKinds(ctx), nil
	}))
	s.add(getMessageFormatTool(), handle(s, svc.GetFormatSpec))
	s.add(noticeTool(), handle(s, svc.Notice))

	return s
}

func (s *Server) add(tool mcp.Tool, h server.ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = h
	s.mcp.AddTool(tool, h)
}

// Tools 已注册的工具
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

// Call 按名称直接调用工具，与 stdio 通道走同一个处理函数
func (s *Server) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, ok := s.handlers[req.Params.Name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", req.Params.Name)
	}
	return h(ctx, req)
}

// ServeStdio 阻塞直到 stdin 关闭或收到退出信号
func (s *Server) ServeStdio() error {
	for _, t := range s.tools {
		s.logger.Debug("Registered tool %s", t.Name)
	}
	s.logger.Info("MCP server %s serving %d tools over stdio", ServerName, len(s.tools))
	return server.ServeStdio(s.mcp)
}

// handle 把参数解码成请求结构并调用操作，错误以工具错误返回，结果序列化为 JSON 文本
func handle[T, R any](s *Server, fn func(context.Context, *T) (R, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := new(T)
		if err := decodeArguments(req, in); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments for %s: %v", req.Params.Name, err)), nil
		}

		out, err := fn(ctx, in)
		if err != nil {
			s.logger.Warn("Tool %s failed: %v", req.Params.Name, err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("marshal %s result: %w", req.Params.Name, err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func decodeArguments(req mcp.CallToolRequest, v any) error {
	if req.Params.Arguments == nil {
		return nil
	}
	raw, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
