package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GeneratePaymentReference builds the processor-facing reference for a
// payment attempt. The appointment fragment makes the reference traceable
// in the processor dashboard; the timestamp keeps retries unique.
func GeneratePaymentReference(appointmentID uuid.UUID) string {
	fragment := strings.ReplaceAll(appointmentID.String(), "-", "")[:12]
	return fmt.Sprintf("VFX-%s-%d", fragment, time.Now().UnixNano())
}
