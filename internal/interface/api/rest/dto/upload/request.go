package upload

type (
	InitRequest struct {
		FileName     string  `json:"file_name"`
		RelativePath string  `json:"relative_path"`
		FileSize     uint64  `json:"file_size"`
		ParentID     *uint64 `json:"parent_id"`
	}

	CompleteRequest struct {
		BlobKey     string `json:"blob_key"`
		FileName    string `json:"file_name"`
		FileSize    uint64 `json:"file_size"`
		TotalChunks int    `json:"total_chunks"`
		MimeType    string `json:"mime_type"`
	}

	FoldersRequest struct {
		Path string `json:"path"`
	}
)
