package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/agencyops/agencyops/internal/cache"
	"github.com/agencyops/agencyops/internal/domain/client"
	domainPdf "github.com/agencyops/agencyops/internal/domain/pdf"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/s3"
	"github.com/agencyops/agencyops/internal/storage"
)

// Rendered documents are written under a staging name first and only take
// their final name once the record is persisted. A writer that loses the race
// for a number therefore never touches the winner's file.
const pendingPrefix = ".pending-"

func stagedName(recordID string) string {
	return pendingPrefix + recordID + ".pdf"
}

// documentURL is the API path serving a stored document
func documentURL(kind storage.Kind, fileName string) string {
	return "/v1/" + string(kind) + "/file/" + url.PathEscape(fileName)
}

// trimPDF strips the extension to get the mirror object id
func trimPDF(fileName string) string {
	return strings.TrimSuffix(fileName, ".pdf")
}

// documentPath is the location recorded on a record, relative to the storage
// root
func documentPath(kind storage.Kind, fileName string) string {
	return string(kind) + "/" + fileName
}

// publicURL prefixes path with the configured public base URL. It returns an
// empty string when none is configured.
func (p ServiceParams) publicURL(path string) string {
	base := strings.TrimRight(p.Config.Invoice.PublicBaseURL, "/")
	if base == "" {
		return ""
	}
	return base + path
}

// discardDocument removes a staged or orphaned file. Failures are logged only.
func (p ServiceParams) discardDocument(ctx context.Context, kind storage.Kind, name string) {
	if err := p.Storage.Remove(ctx, kind, name); err != nil {
		p.Logger.Warnw("failed to remove document",
			"error", err,
			"kind", kind,
			"name", name,
		)
	}
}

// mirrorDocument copies a rendered document to S3 when mirroring is enabled.
// It reports whether the copy exists.
func (p ServiceParams) mirrorDocument(ctx context.Context, docType s3.DocumentType, id string, data []byte) bool {
	if p.S3 == nil {
		return false
	}
	if err := p.S3.UploadDocument(ctx, s3.NewPdfDocument(id, data, docType)); err != nil {
		p.reportBestEffort(ctx, err, "failed to mirror document to s3",
			"document_type", docType,
			"document_id", id,
		)
		return false
	}
	return true
}

// downloadLink is the link sent to recipients: a presigned S3 link when the
// document was mirrored, the public API URL otherwise
func (p ServiceParams) downloadLink(ctx context.Context, docType s3.DocumentType, id string, mirrored bool, apiPath string) string {
	if mirrored {
		link, err := p.S3.GetPresignedUrl(ctx, id, docType)
		if err == nil {
			return link
		}
		p.Logger.Warnw("failed to presign mirrored document, using public url",
			"error", err,
			"document_type", docType,
			"document_id", id,
		)
	}
	return p.publicURL(apiPath)
}

func (p ServiceParams) unmirrorDocument(ctx context.Context, docType s3.DocumentType, id string) {
	if p.S3 == nil {
		return
	}
	if err := p.S3.DeleteDocument(ctx, id, docType); err != nil {
		p.reportBestEffort(ctx, err, "failed to delete mirrored document",
			"document_type", docType,
			"document_id", id,
		)
	}
}

// reportBestEffort logs and reports a failure that must not fail the request
func (p ServiceParams) reportBestEffort(ctx context.Context, err error, msg string, keysAndValues ...interface{}) {
	p.Logger.Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
	if p.Sentry != nil {
		p.Sentry.CaptureException(ctx, err)
	}
}

// noteCollision leaves a breadcrumb for a number collision that will be
// retried, carrying the details of the duplicate-key error
func (p ServiceParams) noteCollision(ctx context.Context, document string, attempt int, err error) {
	if p.Sentry == nil {
		return
	}
	data := ierr.ReportableDetails(err)
	data["attempt"] = attempt
	p.Sentry.AddBreadcrumb(ctx, document, "number collision", data)
}

// getSubEntity loads a sub-entity through the lookup cache
func (p ServiceParams) getSubEntity(ctx context.Context, id string) (*subentity.SubEntity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ierr.NewError("sub-entity id is required").
			WithHint("Sub-entity ID is required").
			Mark(ierr.ErrValidation)
	}

	return cache.Lookup(ctx, p.Cache, cache.Key(cache.PrefixSubEntity, id), func(ctx context.Context) (*subentity.SubEntity, error) {
		return p.SubEntityRepo.Get(ctx, id)
	})
}

// resolveClient finds a client by id, then by client code or email
func (p ServiceParams) resolveClient(ctx context.Context, ref string) (*client.Client, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ierr.NewError("client reference is required").
			WithHint("Client ID is required").
			Mark(ierr.ErrValidation)
	}

	return cache.Lookup(ctx, p.Cache, cache.Key(cache.PrefixClient, ref), func(ctx context.Context) (*client.Client, error) {
		c, err := p.ClientRepo.Get(ctx, ref)
		if ierr.IsNotFound(err) {
			c, err = p.ClientRepo.GetByReference(ctx, ref)
		}
		return c, err
	})
}

func billerInfo(se *subentity.SubEntity) *domainPdf.BillerInfo {
	return &domainPdf.BillerInfo{
		Name:                se.Name,
		Tagline:             se.Tagline,
		LogoPath:            se.LogoPath,
		AddressLine1:        se.AddressLine1,
		AddressLine2:        se.AddressLine2,
		ContactEmail:        se.ContactEmail,
		TaxNumber:           se.TaxNumber,
		AuthorisedSignatory: se.AuthorisedSignatory,
		Bank: domainPdf.BankInfo{
			BankName:      se.BankDetails.BankName,
			AccountHolder: se.BankDetails.AccountHolder,
			AccountType:   se.BankDetails.AccountType,
			AccountNumber: se.BankDetails.AccountNumber,
			IFSCCode:      se.BankDetails.IFSCCode,
			UPIID:         se.BankDetails.UPIID,
		},
	}
}

func recipientInfo(c *client.Client) *domainPdf.RecipientInfo {
	return &domainPdf.RecipientInfo{
		Name:         c.Name,
		BusinessName: c.BusinessName,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
	}
}
