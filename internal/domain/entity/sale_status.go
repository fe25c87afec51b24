package entity

import (
	"fmt"
	"strings"

	"github.com/jhoicas/vento-pos/internal/domain"
)

// SaleStatus estado de una venta. Se persiste como texto (pending, completed, ...).
type SaleStatus int

const (
	SaleStatusPending SaleStatus = iota + 1
	SaleStatusCompleted
	SaleStatusCancelled
	SaleStatusRefunded
	// SaleStatusPartialRefund está reservado: ninguna operación transiciona a él.
	SaleStatusPartialRefund
)

func (s SaleStatus) String() string {
	switch s {
	case SaleStatusPending:
		return "pending"
	case SaleStatusCompleted:
		return "completed"
	case SaleStatusCancelled:
		return "cancelled"
	case SaleStatusRefunded:
		return "refunded"
	case SaleStatusPartialRefund:
		return "partial_refund"
	default:
		return fmt.Sprintf("SaleStatus(%d)", int(s))
	}
}

// DisplayName nombre para mostrar en recibos y reportes.
func (s SaleStatus) DisplayName() string {
	switch s {
	case SaleStatusPending:
		return "Pendiente"
	case SaleStatusCompleted:
		return "Completada"
	case SaleStatusCancelled:
		return "Cancelada"
	case SaleStatusRefunded:
		return "Reembolsada"
	case SaleStatusPartialRefund:
		return "Reembolso parcial"
	default:
		return "Desconocido"
	}
}

// CanTransitionTo implementa la máquina de estados:
// Pending → {Completed, Cancelled}; Completed → {Cancelled, Refunded}; Cancelled y Refunded son terminales.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return next == SaleStatusCompleted || next == SaleStatusCancelled
	case SaleStatusCompleted:
		return next == SaleStatusCancelled || next == SaleStatusRefunded
	case SaleStatusCancelled, SaleStatusRefunded, SaleStatusPartialRefund:
		return false
	default:
		return false
	}
}

// IsTerminal indica si la venta ya no admite cambios de estado.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusCancelled || s == SaleStatusRefunded
}

// ParseSaleStatus convierte el texto persistido al enum.
func ParseSaleStatus(s string) (SaleStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return SaleStatusPending, nil
	case "completed":
		return SaleStatusCompleted, nil
	case "cancelled":
		return SaleStatusCancelled, nil
	case "refunded":
		return SaleStatusRefunded, nil
	case "partial_refund":
		return SaleStatusPartialRefund, nil
	}
	return 0, domain.NewValidationError("status", fmt.Sprintf("estado de venta desconocido %q", s))
}

// PaymentMethod método de pago. Se persiste como texto (cash, card, ...).
type PaymentMethod int

const (
	PaymentCash PaymentMethod = iota + 1
	PaymentCard
	PaymentTransfer
	PaymentMobile
	PaymentMixed
	PaymentCredit
)

func (m PaymentMethod) String() string {
	switch m {
	case PaymentCash:
		return "cash"
	case PaymentCard:
		return "card"
	case PaymentTransfer:
		return "transfer"
	case PaymentMobile:
		return "mobile"
	case PaymentMixed:
		return "mixed"
	case PaymentCredit:
		return "credit"
	default:
		return fmt.Sprintf("PaymentMethod(%d)", int(m))
	}
}

// DisplayName nombre para mostrar en recibos.
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentCash:
		return "Efectivo"
	case PaymentCard:
		return "Tarjeta"
	case PaymentTransfer:
		return "Transferencia"
	case PaymentMobile:
		return "Pago móvil"
	case PaymentMixed:
		return "Mixto"
	case PaymentCredit:
		return "Crédito"
	default:
		return "Desconocido"
	}
}

// ParsePaymentMethod convierte el texto de la interfaz externa al enum.
// Vacío equivale a efectivo; un valor desconocido es un error de validación.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cash":
		return PaymentCash, nil
	case "card":
		return PaymentCard, nil
	case "transfer":
		return PaymentTransfer, nil
	case "mobile":
		return PaymentMobile, nil
	case "mixed":
		return PaymentMixed, nil
	case "credit":
		return PaymentCredit, nil
	}
	return 0, domain.NewValidationError("payment_method", fmt.Sprintf("método de pago desconocido %q", s))
}
