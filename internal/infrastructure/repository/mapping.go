package repository

import (
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/db/models"
)

func toJobModel(job domain.ImportJob) models.ImportJob {
	return models.ImportJob{
		ID:             job.ID,
		CreatedBy:      job.CreatedByID,
		Filename:       job.Filename,
		TotalRecords:   job.TotalRecords,
		ProcessedCount: job.ProcessedCount,
		Status:         string(job.Status),
		CreatedAt:      job.CreatedAt,
		CompletedAt:    job.CompletedAt,
	}
}

func toJobDomain(row models.ImportJob) domain.ImportJob {
	return domain.ImportJob{
		ID:             row.ID,
		CreatedByID:    row.CreatedBy,
		Filename:       row.Filename,
		TotalRecords:   row.TotalRecords,
		ProcessedCount: row.ProcessedCount,
		Status:         domain.JobStatus(row.Status),
		CreatedAt:      row.CreatedAt,
		CompletedAt:    row.CompletedAt,
	}
}

func toRowModel(row domain.ImportRow) models.ImportRow {
	n := row.NormalizedData
	out := models.ImportRow{
		ID:       row.ID,
		ImportID: row.ImportID,
		RowIndex: row.RowIndex,
		RawData:  map[string]string(row.RawData),
		NormalizedData: models.NormalizedData{
			FullName:       n.FullName,
			Email:          n.Email,
			Mobile:         n.Mobile,
			CountryCode:    n.CountryCode,
			Gender:         string(n.Gender),
			ProgramRef:     n.ProgramRef,
			ProgramID:      n.ProgramID,
			GroupName:      n.GroupName,
			Password:       n.Password,
			ExamStart:      n.ExamStart,
			ExamEnd:        n.ExamEnd,
			ExistingUserID: n.ExistingUserID,
		},
		Status:          string(row.Status),
		ErrorMessage:    row.ErrorMessage,
		GroupMatchScore: row.GroupMatchScore,
		MatchedGroupID:  row.MatchedGroupID,
		Overridden:      row.Overridden,
	}
	if out.RawData == nil {
		out.RawData = map[string]string{}
	}
	if row.ResultType != nil {
		v := string(*row.ResultType)
		out.ResultType = &v
	}
	if row.OverrideData != nil {
		out.OverrideData = &models.OverrideData{GroupID: row.OverrideData.GroupID}
	}
	return out
}

func toRowDomain(row models.ImportRow) domain.ImportRow {
	n := row.NormalizedData
	out := domain.ImportRow{
		ID:       row.ID,
		ImportID: row.ImportID,
		RowIndex: row.RowIndex,
		RawData:  domain.RawFields(row.RawData),
		NormalizedData: domain.NormalizedRow{
			FullName:       n.FullName,
			Email:          n.Email,
			Mobile:         n.Mobile,
			CountryCode:    n.CountryCode,
			Gender:         domain.Gender(n.Gender),
			ProgramRef:     n.ProgramRef,
			ProgramID:      n.ProgramID,
			GroupName:      n.GroupName,
			Password:       n.Password,
			ExamStart:      n.ExamStart,
			ExamEnd:        n.ExamEnd,
			ExistingUserID: n.ExistingUserID,
		},
		Status:          domain.RowStatus(row.Status),
		ErrorMessage:    row.ErrorMessage,
		GroupMatchScore: row.GroupMatchScore,
		MatchedGroupID:  row.MatchedGroupID,
		Overridden:      row.Overridden,
	}
	if row.ResultType != nil {
		rt := domain.ResultType(*row.ResultType)
		out.ResultType = &rt
	}
	if row.OverrideData != nil {
		out.OverrideData = &domain.OverrideData{GroupID: row.OverrideData.GroupID}
	}
	return out
}
