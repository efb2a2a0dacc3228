package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-pos-store/internal/database"
	"go-pos-store/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers a store operator's question by letting the model call
// the same inventory and report queries the HTTP surface uses.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant for a point-of-sale system.

	RULES:
	1. READ: If a user asks for PRICE, STOCK, BARCODE or DETAILS of a product,
	   call 'check_inventory' and read the answer from the returned JSON.
	2. RESTOCK: If a user asks what needs restocking, call 'low_stock'.
	3. SALES: If the user asks for sales or revenue, use 'get_sales_report'.
	4. UPDATE: To change a price by product NAME, first find the ID with
	   'check_inventory', then call 'update_product_price' with that ID.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Barcode, Price or Stock.",
				},
				{
					Name:        "low_stock",
					Description: "List products whose stock has fallen below a threshold (default 10).",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"threshold": {Type: genai.TypeInteger, Description: "Stock level below which a product counts as low"},
						},
					},
				},
				{
					Name:        "update_product_price",
					Description: "Update the price of a specific product using its ID",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"product_id": {Type: genai.TypeInteger, Description: "ID of the product"},
							"new_price":  {Type: genai.TypeNumber, Description: "New price"},
						},
						Required: []string{"product_id", "new_price"},
					},
				},
				{
					Name:        "get_sales_report",
					Description: "Get total sales revenue and order count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, session)
			case "low_stock":
				return executeLowStock(ctx, session, funcCall)
			case "update_product_price":
				return executeUpdatePrice(ctx, session, funcCall)
			case "get_sales_report":
				return executeSalesReport(ctx, session, funcCall)
			}
		}
	}

	return printResponse(resp), nil
}

type inventoryRow struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Barcode string  `json:"barcode"`
	Stock   int     `json:"stock"`
	Price   float64 `json:"price"`
}

func executeCheckInventory(ctx context.Context, session *genai.ChatSession) (string, error) {
	var products []models.Product
	database.DB.Find(&products)

	rows := make([]inventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, inventoryRow{
			ID:      p.ID,
			Name:    p.Name,
			Barcode: p.Barcode,
			Stock:   p.StockQuantity,
			Price:   p.Price,
		})
	}

	jsonBytes, _ := json.Marshal(rows)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "", err
	}

	// The model may follow an inventory read with a price update
	return handleRecursiveToolCalls(ctx, session, finalResp)
}

func handleRecursiveToolCalls(ctx context.Context, session *genai.ChatSession, resp *genai.GenerateContentResponse) (string, error) {
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			if funcCall.Name == "update_product_price" {
				return executeUpdatePrice(ctx, session, funcCall)
			}
		}
	}
	return printResponse(resp), nil
}

func executeLowStock(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) (string, error) {
	threshold := 10
	if raw, ok := funcCall.Args["threshold"].(float64); ok {
		threshold = int(raw)
	}

	var products []models.Product
	database.DB.Where("stock_quantity < ?", threshold).Find(&products)

	rows := make([]inventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, inventoryRow{ID: p.ID, Name: p.Name, Barcode: p.Barcode, Stock: p.StockQuantity, Price: p.Price})
	}
	jsonBytes, _ := json.Marshal(rows)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "low_stock",
		Response: map[string]interface{}{"products": string(jsonBytes), "threshold": threshold},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func executeUpdatePrice(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) (string, error) {
	args := funcCall.Args
	productID := int(args["product_id"].(float64))
	newPrice := args["new_price"].(float64)

	result := database.DB.Model(&models.Product{}).Where("id = ?", productID).Update("price", newPrice)

	msg := "Success"
	if result.RowsAffected == 0 {
		msg = "Product ID not found"
	}

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "update_product_price",
		Response: map[string]interface{}{"status": msg, "new_price": newPrice},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) (string, error) {
	args := funcCall.Args
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)

	start := database.ParseReportDate(startStr)
	end := database.ParseReportDate(endStr)
	if start == nil || end == nil {
		return "Error: Dates must be in YYYY-MM-DD format.", nil
	}

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales.", nil
	}

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":     report.TotalRevenue,
			"sales_count": report.TotalCount,
		},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
