// services/errors.go
package services

// ErrorCode is the coarse taxonomy callers branch on. Every failure the
// engine returns is a *Condition carrying one of these codes; handlers map
// them onto HTTP statuses.
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "not_found"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeInvalidState      ErrorCode = "invalid_state"
	CodeInvalidInput      ErrorCode = "invalid_input"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
	CodeTransferFailed    ErrorCode = "transfer_failed"
)

// Condition is a named failure. All failures are local and atomic: an
// operation that returns a Condition has persisted nothing.
type Condition struct {
	Code ErrorCode
	Name string
}

func (e *Condition) Error() string { return e.Name }

var (
	ErrPaused = &Condition{CodeInvalidState, "Paused"}

	// Marketplace
	ErrInvalidID             = &Condition{CodeInvalidInput, "InvalidId"}
	ErrDuplicateGame         = &Condition{CodeInvalidInput, "DuplicateGame"}
	ErrGameNotFound          = &Condition{CodeNotFound, "GameNotFound"}
	ErrNotGameCreator        = &Condition{CodeUnauthorized, "NotGameCreator"}
	ErrGameNotActive         = &Condition{CodeInvalidState, "GameNotActive"}
	ErrDuplicateItem         = &Condition{CodeInvalidInput, "DuplicateItem"}
	ErrItemNotFound          = &Condition{CodeNotFound, "ItemNotFound"}
	ErrNotItemCreator        = &Condition{CodeUnauthorized, "NotItemCreator"}
	ErrPriceNotPositive      = &Condition{CodeInvalidInput, "PriceNotPositive"}
	ErrInvalidCategory       = &Condition{CodeInvalidInput, "InvalidCategory"}
	ErrItemNotActive         = &Condition{CodeInvalidState, "ItemNotActive"}
	ErrSoldOut               = &Condition{CodeResourceExhausted, "SoldOut"}
	ErrCannotPurchaseOwnItem = &Condition{CodeInvalidInput, "CannotPurchaseOwnItem"}
	ErrAlreadyOwned          = &Condition{CodeInvalidState, "AlreadyOwned"}
	ErrNotConsumable         = &Condition{CodeInvalidInput, "NotConsumable"}
	ErrNoConsumablesOwned    = &Condition{CodeResourceExhausted, "NoConsumablesOwned"}

	// Tournaments
	ErrTournamentExists            = &Condition{CodeInvalidInput, "TournamentExists"}
	ErrTournamentNotFound          = &Condition{CodeNotFound, "TournamentNotFound"}
	ErrNeedAtLeastTwoParticipants  = &Condition{CodeInvalidInput, "NeedAtLeastTwoParticipants"}
	ErrInvalidRegistrationPeriod   = &Condition{CodeInvalidInput, "InvalidRegistrationPeriod"}
	ErrRegistrationBeforeStart     = &Condition{CodeInvalidInput, "RegistrationMustEndBeforeStart"}
	ErrNotAuthorized               = &Condition{CodeUnauthorized, "NotAuthorized"}
	ErrMustTotal100                = &Condition{CodeInvalidInput, "MustTotal100"}
	ErrCannotModify                = &Condition{CodeInvalidState, "CannotModify"}
	ErrNotInRegistration           = &Condition{CodeInvalidState, "NotInRegistration"}
	ErrRegistrationNotOpen         = &Condition{CodeInvalidState, "RegistrationNotOpen"}
	ErrRegistrationClosed          = &Condition{CodeInvalidState, "RegistrationClosed"}
	ErrTournamentFull              = &Condition{CodeResourceExhausted, "TournamentFull"}
	ErrAlreadyRegistered           = &Condition{CodeInvalidState, "AlreadyRegistered"}
	ErrCannotAddToPool             = &Condition{CodeInvalidState, "CannotAddToPool"}
	ErrAmountNotPositive           = &Condition{CodeInvalidInput, "AmountNotPositive"}
	ErrNotStartTimeYet             = &Condition{CodeInvalidState, "NotStartTimeYet"}
	ErrNotEnoughParticipants       = &Condition{CodeInvalidState, "NotEnoughParticipants"}
	ErrInvalidStatus               = &Condition{CodeInvalidState, "InvalidStatus"}
	ErrNotActive                   = &Condition{CodeInvalidState, "NotActive"}
	ErrFirstNotParticipant         = &Condition{CodeInvalidInput, "FirstNotParticipant"}
	ErrSecondNotParticipant        = &Condition{CodeInvalidInput, "SecondNotParticipant"}
	ErrThirdNotParticipant         = &Condition{CodeInvalidInput, "ThirdNotParticipant"}
	ErrCannotCancel                = &Condition{CodeInvalidState, "CannotCancel"}
	ErrWinnersMustBeDistinct       = &Condition{CodeInvalidInput, "WinnersMustBeDistinct"}

	// Admin
	ErrInvalidTreasuryAddress = &Condition{CodeInvalidInput, "InvalidTreasuryAddress"}

	// Wallet
	ErrTransferFailed = &Condition{CodeTransferFailed, "TransferFailed"}
)
