package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/zhiwen/backend/pkg/ai"
	"github.com/zhiwen/backend/pkg/logger"
)

const (
	defaultGenerateTemperature = 0.5
	defaultMaxContextTokens    = 3000
	maxFollowupQuestions       = 3
)

const generatorSystemInstruction = `你是一个专业的知识问答助手，擅长基于提供的文档内容回答问题。

# 核心原则
准确性优先: 严格基于提供的文档内容回答，不编造或推测信息
完整性: 充分利用所有相关文档片段，提供全面的回答
逻辑性: 回答应条理清晰，逻辑连贯
可追溯: 明确指出信息来源，便于用户验证

# 回答要求
- 如果文档中有明确答案，直接提供准确回答
- 如果文档中信息不完整，说明已知部分并指出缺失内容
- 如果文档中完全没有相关信息，明确告知无法回答
- 使用清晰的中文表达，避免冗长和重复
- 对于复杂问题，使用分点或分段的方式组织回答`

// Generator produces grounded answers from reranked chunks. Context is
// truncated to a token budget so oversized retrievals cannot blow up the
// prompt.
type Generator struct {
	client           ai.Client
	temperature      float64
	maxContextTokens int
	enableCitation   bool
}

type NewGeneratorParams struct {
	Client           ai.Client
	Temperature      float64
	MaxContextTokens int
	DisableCitation  bool
}

func NewGenerator(params NewGeneratorParams) *Generator {
	temperature := params.Temperature
	if temperature <= 0 {
		temperature = defaultGenerateTemperature
	}
	maxContextTokens := params.MaxContextTokens
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	return &Generator{
		client:           params.Client,
		temperature:      temperature,
		maxContextTokens: maxContextTokens,
		enableCitation:   !params.DisableCitation,
	}
}

// Generate answers the query from the given context chunks. With no
// chunks at all it returns a canned response instead of guessing.
func (g *Generator) Generate(
	ctx context.Context,
	query string,
	contextChunks []ScoredChunk,
	customInstruction string,
) (string, error) {
	if len(contextChunks) == 0 {
		return g.NoContextResponse(query), nil
	}

	contextChunks = g.fitContextBudget(contextChunks)
	prompt := buildAnswerPrompt(query, buildStructuredContext(contextChunks), customInstruction)

	answer, err := g.client.GenerateCompletion(
		ctx,
		prompt,
		ai.WithSystemPrompts(generatorSystemInstruction),
		ai.WithTemperature(g.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("rag: generate answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if g.enableCitation && answer != "" {
		answer = addCitations(answer, contextChunks)
	}
	return answer, nil
}

type followupPayload struct {
	Questions []string `json:"questions" jsonschema_description:"与当前主题相关的后续问题建议"`
}

// GenerateFollowupQuestions suggests up to three follow-up questions
// grounded in the answered context. Failures yield an empty list rather
// than an error; followups are a garnish, not the answer.
func (g *Generator) GenerateFollowupQuestions(
	ctx context.Context,
	query string,
	contextChunks []ScoredChunk,
	answer string,
) []string {
	if len(contextChunks) == 0 {
		return nil
	}

	var titles []string
	seen := make(map[string]struct{})
	for _, chunk := range contextChunks {
		if _, ok := seen[chunk.Title]; ok {
			continue
		}
		seen[chunk.Title] = struct{}{}
		titles = append(titles, chunk.Title)
	}

	prompt := fmt.Sprintf(`基于以下问答内容，提出最多%d个用户可能感兴趣的后续问题。
后续问题必须与涉及的文档主题（%s）相关，并且能够用同一知识库回答。

原始问题: %s

回答:
%s`, maxFollowupQuestions, strings.Join(titles, "、"), query, answer)

	var payload followupPayload
	err := g.client.GenerateCompletionWithFormat(
		ctx,
		"followup_questions",
		"Follow-up question suggestions for a knowledge base answer",
		prompt,
		&payload,
		ai.WithTemperature(0.7),
	)
	if err != nil {
		logger.Warn("[RAG] Followup generation failed", "error", err)
		return nil
	}
	if len(payload.Questions) > maxFollowupQuestions {
		payload.Questions = payload.Questions[:maxFollowupQuestions]
	}
	return payload.Questions
}

// NoContextResponse is returned when retrieval found nothing usable.
func (g *Generator) NoContextResponse(query string) string {
	return fmt.Sprintf(`抱歉，我在知识库中没有找到与「%s」相关的信息。

建议：
1. 尝试使用不同的关键词重新提问
2. 确认问题是否在知识库的覆盖范围内
3. 如果是新问题，可能需要添加相关文档到知识库`, query)
}

// fitContextBudget drops trailing chunks once the accumulated context
// exceeds the token budget, always keeping at least the top chunk.
func (g *Generator) fitContextBudget(chunks []ScoredChunk) []ScoredChunk {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return chunks
	}

	total := 0
	for i, chunk := range chunks {
		total += len(enc.Encode(chunk.Content, nil, nil))
		if total > g.maxContextTokens && i > 0 {
			logger.Warn("[RAG] Context over token budget, truncating",
				"kept_chunks", i,
				"dropped_chunks", len(chunks)-i,
			)
			return chunks[:i]
		}
	}
	return chunks
}

func buildStructuredContext(chunks []ScoredChunk) string {
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf(`【文档片段 %d】
来源: %s
位置: 第 %d/%d 段
相关度: %.2f%%
内容:
%s`, i+1, chunk.Title, chunk.ChunkIndex+1, chunk.TotalChunks, chunk.Score*100, chunk.Content))
	}
	return "\n\n" + strings.Repeat("=", 50) + "\n\n" + strings.Join(parts, "\n\n")
}

func buildAnswerPrompt(query, context, customInstruction string) string {
	instruction := ""
	if customInstruction != "" {
		instruction = fmt.Sprintf("\n# 特殊要求\n%s\n", customInstruction)
	}

	return fmt.Sprintf(`%s
# 参考文档
以下是检索到的相关文档片段，按相关度排序：
%s

# 用户问题
%s

# 回答格式
请按以下结构组织你的回答：

**直接回答**: 首先用1-2句话直接回答核心问题（严格按照文档内容回答）
**详细说明**: 如有必要，提供详细的解释和补充信息
**信息来源**: 在回答末尾注明主要信息来源的文档（使用文档标题）

现在请基于以上文档内容回答问题：`, instruction, context, query)
}

// addCitations appends the distinct source titles unless the model
// already cited them.
func addCitations(answer string, chunks []ScoredChunk) string {
	var sources []string
	seen := make(map[string]struct{})
	for _, chunk := range chunks {
		if _, ok := seen[chunk.Title]; ok {
			continue
		}
		seen[chunk.Title] = struct{}{}
		sources = append(sources, chunk.Title)
	}

	if len(sources) == 0 || strings.Contains(answer, "来源") || strings.Contains(answer, "参考") {
		return answer
	}
	return answer + "\n\n---\n**参考来源**: " + strings.Join(sources, "、")
}
