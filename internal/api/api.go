package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cardshop/internal/csvio"
	"cardshop/internal/models"
	"cardshop/internal/pricing"
	customerService "cardshop/internal/services/customers"
	inventoryService "cardshop/internal/services/inventory"
	"cardshop/internal/services/lookup"
	squareService "cardshop/internal/services/square"
	"cardshop/internal/settings"
)

type APIHandler struct {
	db            *gorm.DB
	inventory     *inventoryService.Service
	customers     *customerService.Service
	square        *squareService.Service
	lookupAdapter *lookup.Adapter
	settings      *settings.Store
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, inv *inventoryService.Service, cust *customerService.Service, sq *squareService.Service, adapter *lookup.Adapter, settingsStore *settings.Store) {
	handler := &APIHandler{
		db:            db,
		inventory:     inv,
		customers:     cust,
		square:        sq,
		lookupAdapter: adapter,
		settings:      settingsStore,
	}

	// Inventory routes
	inventory := r.Group("/inventory")
	{
		inventory.GET("", handler.ListInventory)
		inventory.POST("", handler.Intake)
		inventory.POST("/bulk", handler.BulkUpload)
		inventory.POST("/reprice", handler.BulkReprice)
		inventory.DELETE("/batch/:batchid", handler.BatchDelete)
		inventory.GET("/items/:sku", handler.GetItem)
		inventory.PUT("/items/:sku", handler.UpdateItem)
		inventory.DELETE("/items/:sku", handler.DeleteItem)
		inventory.POST("/items/:sku/status", handler.SetStatus)
		inventory.POST("/items/:sku/refresh", handler.RefreshPrice)
		inventory.POST("/items/:sku/paid", handler.MarkPaid)
	}

	// Customer (consignor) routes
	customers := r.Group("/customers")
	{
		customers.GET("", handler.ListCustomers)
		customers.POST("", handler.CreateCustomer)
		customers.GET("/:id", handler.GetCustomer)
		customers.PUT("/:id", handler.UpdateCustomer)
		customers.DELETE("/:id", handler.DeleteCustomer)
		customers.GET("/:id/items", handler.GetCustomerItems)
		customers.POST("/:id/recalculate", handler.RecalculateOwed)
	}

	// Pricing routes
	pricingGroup := r.Group("/pricing")
	{
		pricingGroup.POST("/preview", handler.PricingPreview)
	}

	// Pricing-provider proxy routes
	lookupGroup := r.Group("/lookup")
	{
		lookupGroup.GET("/providers", handler.ListProviders)
		lookupGroup.GET("/search/:provider", handler.SearchCards)
	}

	// CSV routes
	csvGroup := r.Group("/csv")
	{
		csvGroup.POST("/import", handler.ImportCSV)
		csvGroup.GET("/export", handler.ExportCSV)
	}

	// POS sync routes
	squareGroup := r.Group("/square")
	{
		squareGroup.POST("/sync", handler.SquareSyncAll)
		squareGroup.POST("/sync/:sku", handler.SquareSyncItem)
	}

	// Settings routes
	settingsGroup := r.Group("/settings")
	{
		settingsGroup.GET("/pricing", handler.GetPricingSettings)
		settingsGroup.PUT("/pricing", handler.UpdatePricingSettings)
	}

	r.GET("/dashboard", handler.GetDashboard)
}

// Inventory handlers

func (h *APIHandler) ListInventory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	filter := inventoryService.Filter{
		Status:  c.Query("status"),
		Game:    c.Query("game"),
		BatchID: c.Query("batch_id"),
		Search:  c.Query("search"),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 32); err == nil {
		id := uint(customerID)
		filter.CustomerID = &id
	}

	items, err := h.inventory.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"page":  page,
		"limit": limit,
	})
}

func (h *APIHandler) Intake(c *gin.Context) {
	var req inventoryService.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventory.Intake(req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *APIHandler) GetItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Param("sku"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *APIHandler) UpdateItem(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.inventory.Update(c.Param("sku"), updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully"})
}

func (h *APIHandler) DeleteItem(c *gin.Context) {
	if err := h.inventory.Delete(c.Param("sku")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

func (h *APIHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.inventory.SetStatus(c.Param("sku"), req.Status); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

func (h *APIHandler) RefreshPrice(c *gin.Context) {
	var req struct {
		MarketPrice float64 `json:"market_price"`
		Source      string  `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	item, err := h.inventory.RefreshPrice(c.Param("sku"), req.MarketPrice, req.Source)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *APIHandler) MarkPaid(c *gin.Context) {
	if err := h.customers.MarkPaid(c.Param("sku")); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consignor payout settled"})
}

func (h *APIHandler) BulkUpload(c *gin.Context) {
	var req struct {
		Rows []inventoryService.IntakeRequest `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := h.inventory.BulkUpload(c.Request.Context(), req.Rows)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *APIHandler) BulkReprice(c *gin.Context) {
	provider := c.DefaultQuery("provider", "justtcg")
	report := h.inventory.BulkReprice(c.Request.Context(), h.lookupAdapter, provider)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *APIHandler) BatchDelete(c *gin.Context) {
	report := h.inventory.BatchDelete(c.Param("batchid"))
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Customer handlers

func (h *APIHandler) ListCustomers(c *gin.Context) {
	list, err := h.customers.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": list})
}

func (h *APIHandler) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.customers.Create(&customer); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

func (h *APIHandler) GetCustomer(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	customer, err := h.customers.Get(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *APIHandler) UpdateCustomer(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.customers.Update(uint(id), updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully"})
}

func (h *APIHandler) DeleteCustomer(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	if err := h.customers.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

func (h *APIHandler) GetCustomerItems(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	items, err := h.customers.Items(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *APIHandler) RecalculateOwed(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	customer, err := h.customers.RecalculateOwed(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// Pricing handlers

// PricingPreview computes a quote without writing anything. A terminal
// that did its own breakdown can submit it as remote_quote; the local
// rules stay authoritative unless the remote agrees within 1%.
func (h *APIHandler) PricingPreview(c *gin.Context) {
	var req struct {
		MarketPrice     float64        `json:"market_price"`
		AcquisitionType string         `json:"acquisition_type"`
		Condition       string         `json:"condition"`
		PayoutPercent   float64        `json:"payout_percent"`
		RemoteQuote     *pricing.Quote `json:"remote_quote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote := h.inventory.Engine().Compute(req.MarketPrice, req.AcquisitionType, req.Condition, pricing.Options{
		PayoutPercent: req.PayoutPercent,
	})
	if req.RemoteQuote != nil {
		quote = pricing.Reconcile(quote, *req.RemoteQuote)
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// Lookup proxy handlers

func (h *APIHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.lookupAdapter.Providers()})
}

// SearchCards proxies a search to the named upstream provider. An
// upstream 404 has already been normalized to an empty result list by
// the provider; any other upstream failure is forwarded as {error}
// with the upstream status code.
func (h *APIHandler) SearchCards(c *gin.Context) {
	query := lookup.SearchQuery{
		Query:      c.Query("query"),
		CardNumber: c.Query("card_number"),
		Game:       c.Query("game"),
	}
	if query.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	cards, err := h.lookupAdapter.Search(c.Request.Context(), c.Param("provider"), query)
	if err != nil {
		var upstream *lookup.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(upstream.Status, gin.H{"error": upstream.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if cards == nil {
		cards = []lookup.Card{}
	}
	c.JSON(http.StatusOK, gin.H{"results": cards})
}

// CSV handlers

func (h *APIHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	parsed, err := csvio.ImportTCGPlayer(file)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Acquisition details come from the upload form, not the CSV.
	acquisitionType := c.DefaultPostForm("acquisition_type", models.AcquisitionConsignment)
	var customerID *uint
	if id, err := strconv.ParseUint(c.PostForm("customer_id"), 10, 32); err == nil {
		parsedID := uint(id)
		customerID = &parsedID
	}
	payoutPercent, _ := strconv.ParseFloat(c.DefaultPostForm("payout_percent", "0"), 64)

	for i := range parsed.Rows {
		parsed.Rows[i].AcquisitionType = acquisitionType
		parsed.Rows[i].CustomerID = customerID
		parsed.Rows[i].PayoutPercent = payoutPercent
	}

	report := h.inventory.BulkUpload(c.Request.Context(), parsed.Rows)
	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"skipped": parsed.Skipped,
	})
}

func (h *APIHandler) ExportCSV(c *gin.Context) {
	filter := inventoryService.Filter{
		Status:  c.Query("status"),
		Game:    c.Query("game"),
		BatchID: c.Query("batch_id"),
	}
	items, err := h.inventory.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="catalog-export.csv"`)
	if err := csvio.ExportSquare(c.Writer, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Square handlers

func (h *APIHandler) SquareSyncAll(c *gin.Context) {
	filter := inventoryService.Filter{
		Status:  c.Query("status"),
		BatchID: c.Query("batch_id"),
	}
	items, err := h.inventory.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	succeeded, failed, results := h.square.SyncAll(c.Request.Context(), items)
	c.JSON(http.StatusOK, gin.H{
		"succeeded": succeeded,
		"failed":    failed,
		"results":   results,
	})
}

func (h *APIHandler) SquareSyncItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Param("sku"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	if err := h.square.SyncItem(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item synced"})
}

// Settings handlers

func (h *APIHandler) GetPricingSettings(c *gin.Context) {
	table := h.settings.ConditionTable()

	conditions := gin.H{}
	for _, code := range []string{"NM", "LP", "MP", "HP", "DMG"} {
		conditions[code] = table.Get(code)
	}

	vendorCode, _ := h.settings.Get(settings.KeyPrinterVendorCode)
	c.JSON(http.StatusOK, gin.H{
		"conditions":          conditions,
		"markup":              table.Markup(),
		"printer_vendor_code": vendorCode,
	})
}

func (h *APIHandler) UpdatePricingSettings(c *gin.Context) {
	var req struct {
		Conditions        map[string]float64 `json:"conditions"`
		Markup            *float64           `json:"markup"`
		PrinterVendorCode *string            `json:"printer_vendor_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for condition, percent := range req.Conditions {
		if err := h.settings.SetConditionPercent(condition, percent); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Markup != nil {
		if err := h.settings.SetMarkup(*req.Markup); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}
	if req.PrinterVendorCode != nil {
		if err := h.settings.Set(settings.KeyPrinterVendorCode, *req.PrinterVendorCode); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}

// Dashboard

func (h *APIHandler) GetDashboard(c *gin.Context) {
	var totalItems, pendingItems, consignments int64
	var totalOwed, inventoryValue float64

	h.db.Model(&models.InventoryItem{}).Count(&totalItems)
	h.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusPending).Count(&pendingItems)
	h.db.Model(&models.InventoryItem{}).Where("acquisition_type = ?", models.AcquisitionConsignment).Count(&consignments)
	h.db.Model(&models.Customer{}).Select("COALESCE(SUM(total_owed), 0)").Scan(&totalOwed)
	h.db.Model(&models.InventoryItem{}).Select("COALESCE(SUM(sell_price * quantity), 0)").Scan(&inventoryValue)

	c.JSON(http.StatusOK, gin.H{
		"total_items":     totalItems,
		"pending_items":   pendingItems,
		"consignments":    consignments,
		"total_owed":      fmt.Sprintf("%.2f", totalOwed),
		"inventory_value": fmt.Sprintf("%.2f", inventoryValue),
	})
}
