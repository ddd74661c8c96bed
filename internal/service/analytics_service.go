package service

import (
	"github.com/goblog/internal/db"
	"gorm.io/gorm"
)

// AnalyticsService 记录文章访问日志。
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates an AnalyticsService instance.
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// RecordVisit 写入一条访问记录。调用方将失败视为尽力而为，不影响请求。
func (s *AnalyticsService) RecordVisit(postID uint, visitorID string) error {
	return s.db.Create(&db.PostVisit{PostID: postID, VisitorID: visitorID}).Error
}

// VisitCount 返回指定文章的访问记录条数。
func (s *AnalyticsService) VisitCount(postID uint) (int64, error) {
	var total int64
	err := s.db.Model(&db.PostVisit{}).Where("post_id = ?", postID).Count(&total).Error
	return total, err
}
