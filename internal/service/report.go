package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"carloan-service/internal/clients"
	"carloan-service/internal/domain"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// CarLister is the slice of CarService the report pipeline needs.
type CarLister interface {
	CarsByUserID(ctx context.Context, userID int64) []domain.Car
}

type ReportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	UserID   int64     `json:"user_id"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	Created  time.Time `json:"created_at"`
}

const (
	reportSetKey = "report_ids"
	reportTTL    = 20 * time.Minute
)

// ReportService generates XLSX summaries of a user's cars and loans in the
// background, tracks progress in redis and notifies the user over websocket
// when the file is ready.
type ReportService struct {
	cars    CarLister
	redis   *clients.RedisClient
	storage clients.ReportStorage
	ws      *clients.WebSocketClient
	now     func() time.Time
}

func NewReportService(
	cars CarLister,
	redis *clients.RedisClient,
	storage clients.ReportStorage,
	ws *clients.WebSocketClient,
) *ReportService {
	return &ReportService{
		cars:    cars,
		redis:   redis,
		storage: storage,
		ws:      ws,
		now:     time.Now,
	}
}

type reportColumn struct {
	Header string
	Value  func(car domain.Car, now time.Time) any
}

func loanField(car domain.Car, f func(l *domain.LoanRecord) any) any {
	if car.Loan == nil {
		return ""
	}
	return f(car.Loan)
}

var reportColumns = []reportColumn{
	{"Vehicle", func(c domain.Car, _ time.Time) any {
		return fmt.Sprintf("%d %s %s", c.Year, c.Make, c.Model)
	}},
	{"VIN", func(c domain.Car, _ time.Time) any { return c.VIN }},
	{"Loan Type", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any { return string(l.Kind) })
	}},
	{"Original Amount", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any { return l.OriginalAmount })
	}},
	{"Payoff Amount", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any { return l.PayoffAmount })
	}},
	{"Start Date", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any { return l.StartDate.Format("2006-01-02") })
	}},
	{"Monthly Payment", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any {
			switch l.Kind {
			case domain.KindRetail:
				return l.MonthlyPayment()
			case domain.KindLease:
				return l.Lease.MonthlyPayment
			}
			return ""
		})
	}},
	{"Early Termination Fee", func(c domain.Car, now time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any {
			if l.Kind != domain.KindLease || l.IsPaidOff {
				return ""
			}
			return l.EarlyTerminationFee(now)
		})
	}},
	{"Status", func(c domain.Car, _ time.Time) any {
		if c.Loan == nil {
			return "Owned outright"
		}
		if c.Loan.IsPaidOff {
			return "Paid off"
		}
		return "Active"
	}},
	{"Paid Off By", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any {
			if l.PaidOffBy == nil {
				return ""
			}
			return *l.PaidOffBy
		})
	}},
	{"Paid Off Date", func(c domain.Car, _ time.Time) any {
		return loanField(c, func(l *domain.LoanRecord) any {
			if l.PaidOffDate == nil {
				return ""
			}
			return l.PaidOffDate.Format("2006-01-02")
		})
	}},
}

func (s *ReportService) saveStatus(ctx context.Context, st *ReportStatus) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), reportTTL); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, reportSetKey, st.Key)
}

// StartLoansReport kicks off a background export of the user's cars and
// loans and returns the report id the caller can poll.
func (s *ReportService) StartLoansReport(ctx context.Context, userID int64) (string, error) {
	reportID := fmt.Sprintf("reports:%s", uuid.NewString())

	status := &ReportStatus{
		Key:      reportID,
		Type:     "loans",
		UserID:   userID,
		Progress: 0,
		Created:  s.now(),
	}
	_ = s.saveStatus(ctx, status)

	go s.runLoansReport(context.Background(), status)

	return reportID, nil
}

// BuildLoansWorkbook renders the report rows for the given cars. Split out
// of the background run so it can be exercised directly.
func (s *ReportService) BuildLoansWorkbook(cars []domain.Car, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Loans"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, err
		}
	}

	for rowIdx, car := range cars {
		for colIdx, col := range reportColumns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, col.Value(car, now)); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func (s *ReportService) runLoansReport(ctx context.Context, status *ReportStatus) {
	fail := func(err error) {
		log.Printf("[REPORT] %s failed: %v", status.Key, err)
		if s.ws != nil {
			_ = s.ws.NotifyReportFailed(ctx, status.UserID, status.Key, err.Error())
		}
	}

	cars := s.cars.CarsByUserID(ctx, status.UserID)

	f, err := s.BuildLoansWorkbook(cars, s.now())
	if err != nil {
		fail(err)
		return
	}

	// Rows are done; 100 is reserved for "file URL is ready".
	status.Progress = 95
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, status.UserID, status.Key, 95, "uploading")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		fail(err)
		return
	}

	fileName := fmt.Sprintf("loans_%s.xlsx", s.now().Format("20060102_150405"))
	saved, err := s.storage.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		fail(err)
		return
	}

	url, err := s.storage.GetURL(ctx, saved)
	if err != nil {
		fail(err)
		return
	}

	status.FileURL = &url
	status.Progress = 100
	_ = s.saveStatus(ctx, status)

	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, status.UserID, status.Key, 100, "ready")
		_ = s.ws.NotifyReportReady(ctx, status.UserID, status.Key, url, fileName)
	}
}

// GetReports lists the user's recent reports, newest first.
func (s *ReportService) GetReports(ctx context.Context, userID int64) ([]ReportStatus, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	keys, err := s.redis.SMembers(ctx, reportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get report keys: %w", err)
	}

	var statuses []ReportStatus
	for _, key := range keys {
		data, err := s.redis.Get(ctx, key)
		if err != nil {
			continue // expired entries linger in the set until their key dies
		}

		var status ReportStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}
		if status.UserID == userID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	return statuses, nil
}

// GetReport returns a single report status owned by the user.
func (s *ReportService) GetReport(ctx context.Context, reportID string, userID int64) (*ReportStatus, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	data, err := s.redis.Get(ctx, reportID)
	if err != nil {
		return nil, errors.New("report not found")
	}

	var status ReportStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to parse report status: %w", err)
	}

	if status.UserID != userID {
		return nil, errors.New("report not found")
	}

	return &status, nil
}
