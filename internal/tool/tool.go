// Package tool 实现了 Agent 可调用的能力集合。
//
// 工具集是封闭的：按名字做穷举分发，每个工具有自己的类型化参数结构，
// 执行结果一律是纯文本。失败也编码为解释性文本返回给模型，从不向上层抛错，
// 以便模型用自然语言对失败做出反应。
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smart-chat-go/pkg/embedding"
	"smart-chat-go/pkg/es"
	"smart-chat-go/pkg/log"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// 工具名称。与模型看到的 function 名称一一对应。
const (
	NameWebSearch      = "web_search"
	NameCalculator     = "calculator"
	NameStockPrice     = "stock_price"
	NameWeather        = "weather"
	NameDocumentSearch = "document_search"
)

// Context 携带当轮对话的带外信息。
// document_search 的会话范围由这里注入，而不是由模型参数提供。
type Context struct {
	ThreadID string
}

// Registry 持有全部工具及其外部依赖。
type Registry struct {
	httpClient      *http.Client
	embeddingClient embedding.Client
	indexStore      es.Store
}

// NewRegistry 创建工具注册表。
func NewRegistry(embeddingClient embedding.Client, indexStore es.Store) *Registry {
	return &Registry{
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		embeddingClient: embeddingClient,
		indexStore:      indexStore,
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

type calculatorArgs struct {
	Expression string `json:"expression"`
}

type stockArgs struct {
	Symbol string `json:"symbol"`
}

type weatherArgs struct {
	City string `json:"city"`
}

// Definitions 返回提供给模型的 function 定义列表。
func (r *Registry) Definitions() []openai.Tool {
	return []openai.Tool{
		functionTool(NameWebSearch,
			"Search the web for current information, news, events, and facts. Use this ONLY for time-sensitive information you genuinely do not know. Do NOT use it for general knowledge.",
			map[string]jsonschema.Definition{
				"query": {Type: jsonschema.String, Description: "Search query for finding current information, news, facts, or events."},
			}, []string{"query"}),
		functionTool(NameCalculator,
			"Perform mathematical calculations. Supports +, -, *, / and parentheses. Examples: '25 * 4', '(100 + 50) / 2'.",
			map[string]jsonschema.Definition{
				"expression": {Type: jsonschema.String, Description: "Mathematical expression to evaluate. Examples: '5 + 3', '100 * 2.5'."},
			}, []string{"expression"}),
		functionTool(NameStockPrice,
			"Get the current stock price for a ticker symbol. Examples: AAPL (Apple), MSFT (Microsoft), GOOGL (Google).",
			map[string]jsonschema.Definition{
				"symbol": {Type: jsonschema.String, Description: "Stock ticker symbol (e.g., 'AAPL', 'GOOGL', 'TSLA')."},
			}, []string{"symbol"}),
		functionTool(NameWeather,
			"Get current weather for a city: temperature, condition and humidity.",
			map[string]jsonschema.Definition{
				"city": {Type: jsonschema.String, Description: "City name (e.g., 'London', 'New York', 'Tokyo')."},
			}, []string{"city"}),
		functionTool(NameDocumentSearch,
			"Search through the documents uploaded to this conversation (knowledge base). Use this ONLY when the user asks about 'the PDF', 'the document' or 'the file I uploaded'.",
			map[string]jsonschema.Definition{
				"query": {Type: jsonschema.String, Description: "Search query to find information in uploaded documents."},
			}, []string{"query"}),
	}
}

// Execute 按名字分发并执行工具，返回纯文本结果。
// 参数解析失败同样以文本形式报告。
func (r *Registry) Execute(ctx context.Context, tctx Context, name string, rawArgs []byte) string {
	log.Infof("[ToolRegistry] 执行工具 '%s', args: %s", name, string(rawArgs))

	switch name {
	case NameWebSearch:
		var args searchArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
		return r.webSearch(ctx, args.Query)

	case NameCalculator:
		var args calculatorArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
		return Calculate(args.Expression)

	case NameStockPrice:
		var args stockArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
		return r.stockPrice(ctx, args.Symbol)

	case NameWeather:
		var args weatherArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
		return r.weather(ctx, args.City)

	case NameDocumentSearch:
		var args searchArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
		return r.documentSearch(ctx, args.Query, tctx.ThreadID)

	default:
		return fmt.Sprintf("Error: unknown tool '%s'.", name)
	}
}

func functionTool(name, description string, props map[string]jsonschema.Definition, required []string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: props,
				Required:   required,
			},
		},
	}
}
