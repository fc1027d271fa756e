package upload

import (
	"filevault-api/internal/application/ports"
	domain "filevault-api/internal/upload"
)

func ToResponseInit(r *ports.InitUploadResult) InitResponse {
	return InitResponse{
		SessionID: r.SessionID,
		BlobKey:   r.BlobKey,
	}
}

func ToResponseChunk(r *ports.ChunkResult) ChunkResponse {
	return ChunkResponse{
		ProgressPercent: r.ProgressPercent,
		IsComplete:      r.IsComplete,
	}
}

func ToResponseStatus(st *domain.SessionStatus) StatusResponse {
	return StatusResponse{
		SessionID: st.SessionID,
		BlobKey:   st.BlobKey,
		PartCount: st.PartCount,
		CreatedAt: st.CreatedAt,
		ExpiresAt: st.ExpiresAt,
	}
}

func ToResponseStats(st domain.Stats) StatsResponse {
	return StatsResponse{
		SessionCount:      st.SessionCount,
		TotalTrackedParts: st.TotalTrackedParts,
	}
}
