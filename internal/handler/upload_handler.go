package handler

import (
	"errors"
	"net/http"
	"strconv"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// UploadHandler 는 등기부 PDF 업로드 요청을 처리한다.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler 는 새 UploadHandler 인스턴스를 생성한다.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadRegistry 는 멀티파트 PDF 업로드를 처리하고 파일 ID 를 돌려준다.
func (h *UploadHandler) UploadRegistry(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "file 필드가 필요합니다", "data": nil})
		return
	}
	defer file.Close()

	var userID *uint
	if claimsValue, exists := c.Get("claims"); exists {
		if claims, ok := claimsValue.(*token.CustomClaims); ok {
			userID = &claims.UserID
		}
	}

	record, err := h.uploadService.UploadRegistry(c.Request.Context(), file, header, userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFile) {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
			return
		}
		log.Errorf("등기부 업로드 실패: fileName=%s error: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "파일 업로드에 실패했습니다", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"fileId":   record.ID,
		"fileName": record.FileName,
		"size":     record.Size,
	}})
}

// GetDownloadURL 은 업로드된 등기부의 프리사인 URL 을 발급한다. 관리자 점검용.
func (h *UploadHandler) GetDownloadURL(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "fileId 형식이 잘못되었습니다", "data": nil})
		return
	}

	url, err := h.uploadService.GetDownloadURL(uint(fileID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "파일을 찾을 수 없습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"url": url}})
}
