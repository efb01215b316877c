//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/config"
	"github.com/shamirguard/ceremony-engine/envelope"
	"github.com/shamirguard/ceremony-engine/journal"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
	"github.com/shamirguard/ceremony-engine/shamir"
	"github.com/shamirguard/ceremony-engine/validation"
)

const generatedSecretSize = 32

// CreateShares runs the create-shares ceremony to completion: binding an
// administrator, collecting ceremony parameters, splitting the secret,
// assigning encrypted shares to keepers, optionally self-testing the
// result, and emitting the shares file. On success it returns a Result
// with Success set. On any failure it returns a nil Result and a non-nil
// error; it never returns a Result with Success false. Either way the
// outcome is also reported to the sink as one operation_completed event.
func (e *Engine) CreateShares() (*Result, error) {
	percent := func(p int) *int { return &p }

	e.emitProgress("binding administrator session", percent(5), journal.EventAdminBound)
	adminPassword, err := e.requestValidatedSecret("Administrator session password")
	if err != nil {
		return e.failCreate(err, "administrator session password was not supplied")
	}
	adminKey := deriveAdminSessionKey(adminPassword, e.cfg.Security.KDFIterations)
	adminPassword.Release()
	e.setAdminKey(adminKey)
	e.audit(journal.EventAdminBound, "administrator session bound")

	org, err := e.gatherOrganization()
	if err != nil {
		return e.failCreate(err, "organization information was not supplied")
	}
	e.journalAppend(journal.EventOrgInfoSet, "organization information recorded")

	threshold, totalShares, err := e.gatherParams()
	if err != nil {
		return e.failCreate(err, "ceremony parameters were not supplied")
	}
	e.journalAppend(journal.EventParamsSet,
		fmt.Sprintf("threshold=%d total_shares=%d", threshold, totalShares))

	secret, err := e.acquireSecret()
	if err != nil {
		return e.failCreate(err, "secret was not supplied")
	}
	masterHash := hashSecret(secret)
	e.journalAppend(journal.EventSecretAcquired, "secret acquired")

	e.emitProgress("splitting secret", percent(40), journal.EventSharesSplit)
	shares, err := shamir.Split(secret, threshold, totalShares)
	if err != nil {
		sealedbuf.ClearBytes(secret)
		return e.failCreate(err, "failed to split secret")
	}
	e.journalAppend(journal.EventSharesSplit, "secret split into shares")

	keepers, err := e.collectKeepers(shares)
	if err != nil {
		sealedbuf.ClearBytes(secret)
		return e.failCreate(err, "keeper collection failed")
	}

	if e.cfg.Security.ConfirmationRequired {
		e.emitProgress("running reconstruction self-test", percent(75), journal.EventSelfTestPassed)
		if selfTestErr := e.runSelfTest(keepers, threshold, secret); selfTestErr != nil {
			e.journalAppend(journal.EventSelfTestFailed, selfTestErr.Error())
			e.audit(journal.EventSelfTestFailed, selfTestErr.Error())
			sealedbuf.ClearBytes(secret)
			e.emitCompleted(false, "self-test failed; no shares file was written", "create_shares", nil)
			return nil, selfTestErr
		}
		e.journalAppend(journal.EventSelfTestPassed, "reconstruction self-test passed")
	}

	output := ShamirSecretOutput{
		Version:          OutputVersion,
		SessionID:        e.sessionID,
		CreatedAt:        time.Now(),
		Organization:     org,
		MasterSecretHash: masterHash,
		Keepers:          keepers,
		Configuration: CeremonyConfiguration{
			TotalShares:         totalShares,
			ThresholdRequired:   threshold,
			Algorithm:           AlgorithmShamirGF256,
			EncryptionAlgorithm: AlgorithmAESGCM,
			KDFAlgorithm:        AlgorithmPBKDF2SHA256,
			KDFIterations:       e.cfg.Security.KDFIterations,
		},
	}

	outputPath, writeErr := e.emitSharesFile(output)
	if writeErr != nil {
		sealedbuf.ClearBytes(secret)
		e.emitCompleted(false, "failed to write shares file", "create_shares", nil)
		return nil, writeErr
	}
	e.journal.RecordShareCreation(totalShares, threshold, filepath.Base(outputPath))
	e.audit(journal.EventSharesEmitted, "shares file emitted: "+outputPath)

	sealedbuf.ClearBytes(secret)
	result := &Result{
		Success:    true,
		Message:    "ceremony completed successfully",
		OutputFile: outputPath,
		SharesData: &output,
	}
	e.emitCompleted(true, result.Message, "create_shares", result)
	return result, nil
}

func (e *Engine) failCreate(err error, message string) (*Result, error) {
	e.journalAppend(journal.EventCreateAbandoned, message)
	e.audit(journal.EventCreateAbandoned, message)
	e.emitCompleted(false, message, "create_shares", nil)
	return nil, err
}

func (e *Engine) gatherOrganization() (OrganizationInfo, error) {
	if e.cfg.Organization.Name != "" {
		reuse, err := e.requestYesNo(fmt.Sprintf(
			"Reuse organization %q (%s)?", e.cfg.Organization.Name, e.cfg.Organization.ContactPhone))
		if err != nil {
			return OrganizationInfo{}, err
		}
		if reuse {
			return OrganizationInfo{
				Name:         e.cfg.Organization.Name,
				ContactPhone: e.cfg.Organization.ContactPhone,
			}, nil
		}
	}

	name, err := e.requestValidatedText("Organization name", InputConstraints{
		MaxLength: 100,
		Validator: func(s string) error { return asError(validation.ValidateName(s)) },
	})
	if err != nil {
		return OrganizationInfo{}, err
	}
	phone, err := e.requestValidatedText("Organization contact phone", InputConstraints{
		MaxLength: 20,
		Validator: func(s string) error { return asError(validation.ValidatePhone(s)) },
	})
	if err != nil {
		return OrganizationInfo{}, err
	}
	return OrganizationInfo{Name: name, ContactPhone: phone}, nil
}

func asError(ce *ceremonyerrors.CeremonyError) error {
	if ce == nil {
		return nil
	}
	return ce
}

func (e *Engine) gatherParams() (threshold, totalShares int, err error) {
	threshold, err = e.requestValidatedInteger("Threshold (minimum shares to reconstruct)",
		InputConstraints{MinValue: 2, MaxValue: 100})
	if err != nil {
		return 0, 0, err
	}
	totalShares, err = e.requestValidatedInteger("Total shares to create",
		InputConstraints{MinValue: threshold, MaxValue: 100})
	if err != nil {
		return 0, 0, err
	}
	return threshold, totalShares, nil
}

func (e *Engine) acquireSecret() ([]byte, error) {
	generate, err := e.requestYesNo("Generate a random secret?")
	if err != nil {
		return nil, err
	}
	if generate {
		secret := make([]byte, generatedSecretSize)
		if _, randErr := rand.Read(secret); randErr != nil {
			return nil, ceremonyerrors.ErrCryptoInternal.Clone().
				WithMsg("failed to generate random secret").WithCause(randErr)
		}
		return secret, nil
	}

	sealed, err := e.requestSecret("Secret to split")
	if err != nil {
		return nil, err
	}
	var secret []byte
	sealed.Borrow(func(b []byte) {
		secret = append([]byte(nil), b...)
	})
	sealed.Release()

	if len(secret) == 0 {
		e.emitValidation(false, "empty secret supplied; substituting a generated secret", "Secret to split")
		secret = make([]byte, generatedSecretSize)
		if _, randErr := rand.Read(secret); randErr != nil {
			return nil, ceremonyerrors.ErrCryptoInternal.Clone().
				WithMsg("failed to generate random secret").WithCause(randErr)
		}
	}
	return secret, nil
}

// collectKeepers pairs each of shares, in order, with a keeper: first
// offering the configured default keepers in preferred-order, then
// prompting for ad-hoc keepers until every share has an owner.
func (e *Engine) collectKeepers(shares []shamir.Share) ([]SecretKeeperRecord, error) {
	keepers := make([]SecretKeeperRecord, 0, len(shares))
	idx := 0

	for _, dk := range config.SortedDefaultKeepers(e.cfg.DefaultKeepers) {
		if idx >= len(shares) {
			break
		}
		use, err := e.requestYesNo(fmt.Sprintf("Use default keeper %s (%s)?", dk.Name, dk.Email))
		if err != nil {
			return nil, err
		}
		if !use {
			continue
		}
		record, err := e.buildKeeperRecord(shares[idx], dk.Name, dk.Phone, dk.Email)
		if err != nil {
			return nil, err
		}
		keepers = append(keepers, record)
		e.journalAppend(journal.EventKeeperAdded, fmt.Sprintf("keeper %d assigned to %s", shares[idx].X, dk.Name))
		idx++
	}

	for idx < len(shares) {
		name, err := e.requestValidatedText("Keeper name", InputConstraints{
			MaxLength: 100,
			Validator: func(s string) error { return asError(validation.ValidateName(s)) },
		})
		if err != nil {
			return nil, err
		}
		phone, err := e.requestValidatedText("Keeper phone", InputConstraints{
			MaxLength: 20,
			Validator: func(s string) error { return asError(validation.ValidatePhone(s)) },
		})
		if err != nil {
			return nil, err
		}
		email, err := e.requestValidatedText("Keeper email", InputConstraints{
			MaxLength: 254,
			Validator: func(s string) error { return asError(validation.ValidateEmail(s)) },
		})
		if err != nil {
			return nil, err
		}
		record, err := e.buildKeeperRecord(shares[idx], name, phone, email)
		if err != nil {
			return nil, err
		}
		keepers = append(keepers, record)
		e.journalAppend(journal.EventKeeperAdded, fmt.Sprintf("keeper %d assigned to %s", shares[idx].X, name))
		idx++
	}

	return keepers, nil
}

func (e *Engine) buildKeeperRecord(share shamir.Share, name, phone, email string) (SecretKeeperRecord, error) {
	password, err := e.requestValidatedSecret(fmt.Sprintf("Password for keeper %s", name))
	if err != nil {
		return SecretKeeperRecord{}, err
	}
	env, err := envelope.Encrypt(share, password, e.cfg.Security.KDFIterations)
	password.Release()
	if err != nil {
		return SecretKeeperRecord{}, err
	}
	return SecretKeeperRecord{
		ID:             uuid.NewString(),
		ShareNumber:    int(share.X),
		Name:           name,
		Phone:          phone,
		Email:          email,
		EncryptedShare: env.EncryptedShare,
		HMAC:           env.HMAC,
		Salt:           env.Salt,
		IV:             env.IV,
		CreatedAt:      time.Now(),
		SessionID:      e.sessionID,
	}, nil
}

const selfTestAttemptsPerKeeper = 3

// runSelfTest verifies that the first threshold keepers can jointly
// reconstruct secret, retrying each keeper's password up to
// selfTestAttemptsPerKeeper times before treating the ceremony as failed.
func (e *Engine) runSelfTest(keepers []SecretKeeperRecord, threshold int, secret []byte) error {
	collected := make([]shamir.Share, 0, threshold)

	for i := 0; i < threshold; i++ {
		keeper := keepers[i]
		env := envelope.Envelope{
			EncryptedShare: keeper.EncryptedShare,
			HMAC:           keeper.HMAC,
			Salt:           keeper.Salt,
			IV:             keeper.IV,
		}

		var share shamir.Share
		var lastErr error
		ok := false
		for attempt := 0; attempt < selfTestAttemptsPerKeeper; attempt++ {
			password, err := e.requestSecret(fmt.Sprintf("Self-test password for keeper %s", keeper.Name))
			if err != nil {
				return err
			}
			share, lastErr = envelope.Decrypt(env, password, e.cfg.Security.KDFIterations)
			password.Release()
			if lastErr == nil {
				ok = true
				break
			}
		}
		if !ok {
			return ceremonyerrors.ErrIntegrityFailure.Clone().
				WithMsg(fmt.Sprintf("self-test failed for keeper %s", keeper.Name)).WithCause(lastErr)
		}
		collected = append(collected, share)
	}

	reconstructed, err := shamir.Combine(collected, threshold)
	if err != nil {
		return err
	}
	defer sealedbuf.ClearBytes(reconstructed)

	if len(reconstructed) != len(secret) {
		return ceremonyerrors.ErrIntegrityFailure.Clone().
			WithMsg("self-test reconstruction length mismatch")
	}
	for i := range secret {
		if reconstructed[i] != secret[i] {
			return ceremonyerrors.ErrIntegrityFailure.Clone().
				WithMsg("self-test reconstruction does not match the original secret")
		}
	}
	return nil
}

func (e *Engine) emitSharesFile(output ShamirSecretOutput) (string, error) {
	name := fmt.Sprintf("secret_shares_%s.json", timestampSuffix(time.Now()))
	path := filepath.Join(e.sessionFolder, name)

	body, err := journal.IndentedJSON(output)
	if err != nil {
		return "", ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to serialize shares output").WithCause(err)
	}
	if writeErr := os.WriteFile(path, body, 0600); writeErr != nil {
		return "", ceremonyerrors.ErrIO.Clone().
			WithMsg("failed to write shares file").WithCause(writeErr)
	}
	return path, nil
}
