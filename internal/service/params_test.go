package service

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/agencyops/agencyops/internal/storage"
	"github.com/agencyops/agencyops/internal/testutil"
)

func testServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.GetConfig(),
		DB:            s.GetDB(),
		PDFGenerator:  s.GetPDFGenerator(),
		Storage:       s.GetStorage(),
		Mailer:        s.GetMailer(),
		Cache:         s.GetCache(),
		Sentry:        s.GetSentry(),
		SequenceRepo:  stores.SequenceRepo,
		SubEntityRepo: stores.SubEntityRepo,
		ClientRepo:    stores.ClientRepo,
		InvoiceRepo:   stores.InvoiceRepo,
		ReceiptRepo:   stores.ReceiptRepo,
	}
}

// storedDocuments lists the file names under one document folder, staged
// files included
func storedDocuments(s *testutil.BaseServiceTestSuite, kind storage.Kind) []string {
	entries, err := os.ReadDir(filepath.Join(s.GetConfig().Storage.RootDir, string(kind)))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
