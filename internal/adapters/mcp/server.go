// Package mcpadapter exposes the meal pipeline as MCP tools so assistant
// clients can log meals from photos and read back stored records.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/core/ports"
)

type Server struct {
	analyzer ports.MealPhotoAnalyzer
	storage  ports.ObjectStorage
	meals    ports.MealReader

	mcp *server.MCPServer
}

func NewServer(analyzer ports.MealPhotoAnalyzer, storage ports.ObjectStorage, meals ports.MealReader) *Server {
	s := &Server{
		analyzer: analyzer,
		storage:  storage,
		meals:    meals,
	}

	s.mcp = server.NewMCPServer("meal-vision", "1.0.0", server.WithToolCapabilities(false))

	analyzeTool := mcp.NewTool("analyze_meal_photo",
		mcp.WithDescription("Analyze a meal photo: recognize food items, resolve nutrition facts and store the meal record."),
		mcp.WithString("photo_path", mcp.Required(), mcp.Description("Local path of the meal photo file.")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the meal record.")),
		mcp.WithString("day_id", mcp.Required(), mcp.Description("Destination day the meal belongs to.")),
		mcp.WithString("category", mcp.Description("Meal category, defaults to snack.")),
	)
	s.mcp.AddTool(analyzeTool, s.handleAnalyzePhoto)

	getMealTool := mcp.NewTool("get_meal",
		mcp.WithDescription("Fetch a stored meal record with its items."),
		mcp.WithString("meal_id", mcp.Required(), mcp.Description("Meal record id.")),
	)
	s.mcp.AddTool(getMealTool, s.handleGetMeal)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleAnalyzePhoto(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	photoPath, err := request.RequireString("photo_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dayID, err := request.RequireString("day_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := request.GetString("category", domain.DefaultCategory)

	file, err := os.Open(photoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open photo: %v", err)), nil
	}
	defer file.Close()

	key := fmt.Sprintf("mcp_%d_%s", time.Now().UnixNano(), filepath.Base(photoPath))
	if err := s.storage.Save(ctx, key, file); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store photo: %v", err)), nil
	}

	result := s.analyzer.Analyze(ctx, domain.AnalysisJob{
		UserID:      userID,
		DayID:       dayID,
		PhotoKey:    key,
		Category:    category,
		RequestedAt: time.Now().UTC(),
	})

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleGetMeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mealID, err := request.RequireString("meal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	meal, items, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(map[string]any{"meal": meal, "items": items}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode meal: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
