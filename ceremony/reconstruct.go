//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/envelope"
	"github.com/shamirguard/ceremony-engine/journal"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
	"github.com/shamirguard/ceremony-engine/shamir"
)

const maxCumulativeDecryptFailures = 10

// ReconstructSecret runs the reconstruct-secret ceremony: binding an
// administrator, loading a shares file, gathering decrypted shares from
// keepers up to a failure budget, combining them, and verifying the
// result against the file's recorded hash. If path is empty, the shell
// is prompted for a FilePath.
func (e *Engine) ReconstructSecret(path string) (*Result, error) {
	percent := func(p int) *int { return &p }

	e.emitProgress("binding administrator session", percent(5), journal.EventAdminBound)
	adminPassword, err := e.requestValidatedSecret("Administrator session password")
	if err != nil {
		return e.failReconstruct(err, "administrator session password was not supplied", 0)
	}
	adminKey := deriveAdminSessionKey(adminPassword, e.cfg.Security.KDFIterations)
	adminPassword.Release()
	e.setAdminKey(adminKey)
	e.audit(journal.EventAdminBound, "administrator session bound")

	output, err := e.loadSharesFile(path)
	if err != nil {
		return e.failReconstruct(err, "failed to load shares file", 0)
	}
	threshold := output.Configuration.ThresholdRequired
	e.journalAppend(journal.EventFileLoaded, fmt.Sprintf("loaded shares file with %d keepers", len(output.Keepers)))

	collected, err := e.gatherShares(output.Keepers, threshold, output.Configuration.KDFIterations)
	if err != nil {
		return e.failReconstruct(err, "share gathering failed", threshold)
	}

	e.emitProgress("combining shares", percent(80), journal.EventRecoveryCombined)
	reconstructed, err := shamir.Combine(collected, threshold)
	if err != nil {
		return e.failReconstruct(err, "failed to combine shares", threshold)
	}
	e.journalAppend(journal.EventRecoveryCombined, "shares combined")

	if hashSecret(reconstructed) != output.MasterSecretHash {
		sealedbuf.ClearBytes(reconstructed)
		failErr := ceremonyerrors.ErrIntegrityFailure.Clone().
			WithMsg("reconstructed secret hash does not match the recorded master secret hash")
		e.journal.RecordShareRecovery(false, threshold)
		return e.failReconstruct(failErr, "hash doesn't match", threshold)
	}

	e.journal.RecordShareRecovery(true, threshold)
	e.journalAppend(journal.EventRecoveryVerified, "reconstructed secret verified")
	e.audit(journal.EventRecoveryVerified, "reconstruction verified against master secret hash")

	result := &Result{
		Success:             true,
		Message:             "secret reconstructed and verified",
		ReconstructedSecret: reconstructed,
	}
	e.emitCompleted(true, result.Message, "reconstruct_secret", result)
	return result, nil
}

func (e *Engine) failReconstruct(err error, message string, threshold int) (*Result, error) {
	e.journalAppend(journal.EventRecoveryFailed, message)
	e.audit(journal.EventRecoveryFailed, message)
	e.emitCompleted(false, message, "reconstruct_secret", nil)
	return nil, err
}

func (e *Engine) loadSharesFile(path string) (ShamirSecretOutput, error) {
	if path == "" {
		resolved, err := e.requestValidatedFilePath("Path to shares file", InputConstraints{
			ExpectedExtension: ".json",
		})
		if err != nil {
			return ShamirSecretOutput{}, err
		}
		path = resolved
	} else if !strings.EqualFold(".json", filepath.Ext(path)) {
		return ShamirSecretOutput{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("shares file must have a .json extension")
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return ShamirSecretOutput{}, ceremonyerrors.ErrIO.Clone().
			WithMsg("failed to read shares file").WithCause(err)
	}

	var output ShamirSecretOutput
	if jsonErr := json.Unmarshal(body, &output); jsonErr != nil {
		return ShamirSecretOutput{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("shares file is not valid JSON").WithCause(jsonErr)
	}
	if len(output.Keepers) == 0 || output.Configuration.ThresholdRequired < 2 {
		return ShamirSecretOutput{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("shares file is missing required fields")
	}
	return output, nil
}

// gatherShares collects threshold distinct successfully-decrypted shares
// from keepers, stopping with TooManyAttempts once cumulative decrypt
// failures reach maxCumulativeDecryptFailures.
func (e *Engine) gatherShares(keepers []SecretKeeperRecord, threshold, kdfIterations int) ([]shamir.Share, error) {
	collected := make([]shamir.Share, 0, threshold)
	used := make(map[int]bool)
	failures := 0

	for len(collected) < threshold {
		if failures >= maxCumulativeDecryptFailures {
			return nil, ceremonyerrors.ErrTooManyAttempts.Clone().
				WithMsg("exceeded cumulative decryption failure budget")
		}

		idx, err := e.requestKeeperIndex(keepers, used)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			return nil, ceremonyerrors.ErrUserCancellation.Clone().
				WithMsg("keeper selection cancelled")
		}

		keeper := keepers[idx-1]
		password, err := e.requestSecret(fmt.Sprintf("Password for keeper %s", keeper.Name))
		if err != nil {
			return nil, err
		}
		env := envelope.Envelope{
			EncryptedShare: keeper.EncryptedShare,
			HMAC:           keeper.HMAC,
			Salt:           keeper.Salt,
			IV:             keeper.IV,
		}
		share, decErr := envelope.Decrypt(env, password, kdfIterations)
		password.Release()

		if decErr != nil {
			failures++
			e.journalAppend(journal.EventRecoveryDecryptFail,
				fmt.Sprintf("decrypt failed for keeper %s", keeper.Name))
			e.audit(journal.EventRecoveryDecryptFail, decErr.Error())
			continue
		}

		used[idx] = true
		collected = append(collected, share)
		e.journalAppend(journal.EventRecoveryDecryptOK,
			fmt.Sprintf("decrypt succeeded for keeper %s", keeper.Name))
	}

	return collected, nil
}

// requestKeeperIndex requests an Integer keeper selection in
// [0, len(keepers)], re-prompting up to maxReprompts times when the
// index has already been used.
func (e *Engine) requestKeeperIndex(keepers []SecretKeeperRecord, used map[int]bool) (int, error) {
	prompt := "Select keeper index (0 to cancel)"
	for attempt := 0; attempt < maxReprompts; attempt++ {
		resp, err := e.requestInput(KindInteger, prompt, InputConstraints{
			MinValue: 0, MaxValue: len(keepers),
		})
		if err != nil {
			return 0, err
		}
		if resp.Integer < 0 || resp.Integer > len(keepers) {
			e.emitValidation(false, "value is outside the accepted range", prompt)
			continue
		}
		if resp.Integer != 0 && used[resp.Integer] {
			e.emitValidation(false, "keeper already used in this reconstruction", prompt)
			continue
		}
		e.emitValidation(true, "accepted", prompt)
		return resp.Integer, nil
	}
	return 0, ceremonyerrors.ErrValidation.Clone().
		WithMsg("exceeded maximum reprompt attempts for " + prompt)
}
