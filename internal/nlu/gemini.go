// Package nlu wraps the Gemini API behind the dialogue engine's
// Classifier and Responder interfaces.  All prompt and tool-schema
// plumbing lives here; the engine never sees the model SDK.
package nlu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
)

const extractToolName = "extract_intent_and_entities"

const classifySystemPrompt = "Anda adalah asisten resepsionis. Tugas Anda adalah menganalisis pesan terakhir " +
	"pengguna dan mengekstrak niat serta informasi (entitas) yang relevan. Gunakan tool " +
	"'extract_intent_and_entities' untuk mengembalikan hasilnya."

const respondSystemPrompt = "Anda adalah asisten bioskop yang ramah dan berbahasa Indonesia. Jawab pertanyaan " +
	"pengguna tentang film, jadwal tayang, dan kursi. Gunakan tool yang tersedia untuk mengambil data; jangan " +
	"mengarang film atau jadwal yang tidak ada."

// Gemini holds two pre-configured model handles: one forced to call
// the extraction tool on every turn, one free to answer or call the
// read-only browsing tools.
type Gemini struct {
	client   *genai.Client
	classify *genai.GenerativeModel
	respond  *genai.GenerativeModel
}

// NewGemini dials the Gemini API and configures the two models.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	classify := client.GenerativeModel(model)
	classify.SetTemperature(0)
	classify.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(classifySystemPrompt)}}
	classify.Tools = []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{extractDeclaration()}}}
	classify.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{extractToolName},
		},
	}

	respond := client.GenerativeModel(model)
	respond.SetTemperature(0)
	respond.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(respondSystemPrompt)}}
	respond.Tools = []*genai.Tool{{FunctionDeclarations: browsingDeclarations()}}

	return &Gemini{client: client, classify: classify, respond: respond}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func extractDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        extractToolName,
		Description: "Mengekstrak niat dan entitas dari pesan pengguna.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"intent": {
					Type: genai.TypeString,
					Enum: []string{"booking", "browsing", "answering_question", "other"},
				},
				"user_name":   {Type: genai.TypeString, Description: "Nama pemesan, jika disebutkan."},
				"movie_title": {Type: genai.TypeString, Description: "Judul film yang disebut pengguna."},
				"genre":       {Type: genai.TypeString, Description: "Genre film yang disebut pengguna."},
				"movie_id":    {Type: genai.TypeString, Description: "ID film, jika pengguna menyebutnya eksplisit."},
				"showtime_id": {Type: genai.TypeString, Description: "ID jadwal tayang, jika disebut eksplisit."},
				"seats": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Kode kursi seperti D7 atau E3.",
				},
			},
			Required: []string{"intent"},
		},
	}
}

func browsingDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "search_movies",
			Description: "Cari film berdasarkan judul atau genre.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":      {Type: genai.TypeString, Description: "Judul film (boleh sebagian)."},
					"genre_name": {Type: genai.TypeString, Description: "Nama genre."},
				},
			},
		},
		{
			Name:        "get_showtimes",
			Description: "Ambil jadwal tayang untuk film tertentu.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"movie_id": {Type: genai.TypeInteger, Description: "ID film."},
				},
				Required: []string{"movie_id"},
			},
		},
		{
			Name:        "get_available_seats",
			Description: "Daftar kursi yang masih tersedia untuk suatu jadwal tayang.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"showtime_id": {Type: genai.TypeInteger, Description: "ID jadwal tayang."},
				},
				Required: []string{"showtime_id"},
			},
		},
	}
}

// Classify runs the extraction tool against a single user message.
func (g *Gemini) Classify(ctx context.Context, text string) (*dialogue.Extraction, error) {
	resp, err := g.classify.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini classify: %w", err)
	}
	call := firstFunctionCall(resp, extractToolName)
	if call == nil {
		return nil, nil
	}
	ext := &dialogue.Extraction{
		Intent:     argAsString(call.Args["intent"]),
		UserName:   argAsString(call.Args["user_name"]),
		MovieTitle: argAsString(call.Args["movie_title"]),
		Genre:      argAsString(call.Args["genre"]),
		MovieID:    argAsString(call.Args["movie_id"]),
		ShowtimeID: argAsString(call.Args["showtime_id"]),
	}
	if raw, ok := call.Args["seats"]; ok {
		switch v := raw.(type) {
		case []any:
			for _, item := range v {
				if s := argAsString(item); s != "" {
					ext.Seats = append(ext.Seats, s)
				}
			}
		case string:
			if v != "" {
				ext.Seats = append(ext.Seats, v)
			}
		}
	}
	return ext, nil
}

// Respond sends the transcript to the answering model and returns its
// text plus any requested tool calls.
func (g *Gemini) Respond(ctx context.Context, transcript []dialogue.Message) (*dialogue.Reply, error) {
	history, last := splitTranscript(transcript)
	if last == nil {
		return &dialogue.Reply{}, nil
	}
	cs := g.respond.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini respond: %w", err)
	}
	reply := &dialogue.Reply{Text: responseText(resp)}
	for _, call := range functionCalls(resp) {
		reply.Calls = append(reply.Calls, dialogue.ToolCall{Name: call.Name, Args: call.Args})
	}
	return reply, nil
}

// Followup feeds tool outputs back to the answering model as function
// responses so it can phrase the final answer.
func (g *Gemini) Followup(ctx context.Context, transcript []dialogue.Message, reply *dialogue.Reply, outputs []dialogue.ToolOutput) (string, error) {
	// The engine has already appended the tool results to the
	// transcript as tool messages; strip them, they are resent below in
	// the structured form the API expects.
	trimmed := transcript
	for len(trimmed) > 0 && trimmed[len(trimmed)-1].Role == dialogue.RoleTool {
		trimmed = trimmed[:len(trimmed)-1]
	}
	history, last := splitTranscript(trimmed)
	if last != nil {
		history = append(history, last)
	}

	modelTurn := &genai.Content{Role: "model"}
	if strings.TrimSpace(reply.Text) != "" {
		modelTurn.Parts = append(modelTurn.Parts, genai.Text(reply.Text))
	}
	for _, call := range reply.Calls {
		modelTurn.Parts = append(modelTurn.Parts, genai.FunctionCall{Name: call.Name, Args: call.Args})
	}
	history = append(history, modelTurn)

	cs := g.respond.StartChat()
	cs.History = history
	parts := make([]genai.Part, 0, len(outputs))
	for _, out := range outputs {
		parts = append(parts, genai.FunctionResponse{
			Name:     out.Call.Name,
			Response: map[string]any{"message": out.Text},
		})
	}
	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini followup: %w", err)
	}
	return responseText(resp), nil
}

// splitTranscript converts the dialogue transcript into API contents,
// returning the history and the final user turn separately.  Tool
// messages from earlier turns are folded into user-role text so the
// model keeps their context without strict call/response pairing.
func splitTranscript(transcript []dialogue.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	for _, msg := range transcript {
		var role, text string
		switch msg.Role {
		case dialogue.RoleAssistant:
			role, text = "model", msg.Content
		case dialogue.RoleTool:
			role = "user"
			text = fmt.Sprintf("(hasil tool %s)\n%s", msg.ToolName, msg.Content)
		default:
			role, text = "user", msg.Content
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	if len(contents) == 0 {
		return nil, nil
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		return contents, nil
	}
	return contents[:len(contents)-1], last
}

func firstFunctionCall(resp *genai.GenerateContentResponse, name string) *genai.FunctionCall {
	for _, call := range functionCalls(resp) {
		if call.Name == name {
			return &call
		}
	}
	return nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if call, ok := part.(genai.FunctionCall); ok {
				calls = append(calls, call)
			}
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// argAsString renders a tool-call argument as a string.  The API hands
// numbers back as float64; ids are kept in their textual form and
// coerced later by the engine.
func argAsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
