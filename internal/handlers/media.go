package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"relume/api/internal/service"
)

func (h HandlerSet) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	result, err := h.uploadService.Upload(c.Request.Context(), service.UploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blob":       result.BlobURL,
		"logical_id": result.LogicalID,
		"version":    result.Version,
		"hash":       result.ContentHash,
		"vision":     result.Vision,
	})
}

func (h HandlerSet) Process(c *gin.Context) {
	var input service.ProcessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json_body"})
		return
	}

	result, err := h.timelineService.Process(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"saved":      true,
		"id":         result.ID,
		"user_id":    result.UserID,
		"blob_url":   result.BlobURL,
		"caption":    result.Caption,
		"tags":       result.Tags,
		"created_at": result.CreatedAt,
	})
}

func (h HandlerSet) Timeline(c *gin.Context) {
	entries, err := h.timelineService.Timeline(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h HandlerSet) Narrate(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json_body"})
		return
	}

	narrative, err := h.narrator.Narrate(c.Request.Context(), body["tags"])
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"narrative": narrative})
}
