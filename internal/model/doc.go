// Package model loads the pre-trained prediction artifacts and runs
// inference over validated customer records. It is structured into small
// files by concern:
//
//   - predictor.go: Predictor type, feature assembly, single/batch predict.
//   - artifact.go: churn classifier artifact loading (XGBoost via leaves).
//   - stack.go: next-purchase stacking regressor (manifest + base models +
//     linear meta-learner).
//   - encoder.go: frozen label encoder over the categorical vocabulary.
//   - errors.go: error types and helpers (IsNotLoaded, IsUnknownCategory).
//
// All loaded models are read-only after Load returns and are shared by
// concurrent requests without locking.
package model
