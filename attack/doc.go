// Package attack implements the statistical key-recovery attack against the
// biased ephemeral-exponent sampler of a CSIDH-style signature scheme.
//
// The signer's secret is an integer vector s in [-B,B]^n. For every signature
// it draws ephemeral vectors uniformly from [-(δ+1)B,(δ+1)B]^n and keeps them
// only when |e[i]-s[i]| <= δB for every coordinate. The acceptance window is
// centred on the secret, so the extreme values observed per coordinate pin
// s[i] down from both sides. Exponent vectors are treated as plain bounded
// integers; no group action or isogeny arithmetic is involved.
package attack
