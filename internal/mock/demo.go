package mock

// NewDemoSource returns a small organization with three accounts and the
// conformance pack layouts the attribution chain handles: a keyword match,
// a pack-name suffix, a sole pack and an unattributable rule.
func NewDemoSource() *ComplianceSource {
	s := NewComplianceSource()
	s.CallerAccountID = "111111111111"

	s.AddAccount("111111111111", "security-tooling")
	s.AddAccount("222222222222", "workloads-prod")
	s.AddAccount("333333333333", "sandbox")

	// security-tooling: CIS + NIST
	s.AddPack("111111111111", "OrgConformsPack-CIS-abc123", 18, 20)
	s.AddPack("111111111111", "OrgConformsPack-NIST-def456", 40, 40)
	s.AddNonCompliantRule("111111111111", "us-east-1", "mfa-enabled-for-iam-console-access-conformance-pack-abc123", 3)
	s.AddNonCompliantRule("111111111111", "us-east-1", "iam-password-policy-conformance-pack-abc123", 1)
	s.AddCompliantRule("111111111111", "us-east-1", "cloudtrail-enabled-conformance-pack-def456")
	s.AddCompliantRule("111111111111", "us-east-1", "kms-cmk-not-scheduled-for-deletion-conformance-pack-def456")

	// workloads-prod: CIS + Security Pillar + APRA baseline
	s.AddPack("222222222222", "OrgConformsPack-CIS-abc123", 17, 20)
	s.AddPack("222222222222", "Security-Pillar-pack", 25, 30)
	s.AddPack("222222222222", "APRA-CPG-234-Compliance", 12, 12)
	s.AddNonCompliantRule("222222222222", "us-east-1", "root-account-mfa-enabled-conformance-pack-abc123", 1)
	s.AddNonCompliantRule("222222222222", "us-east-1", "s3-bucket-public-read-prohibited-conformance-pack-zz9911", 12)
	s.AddNonCompliantRule("222222222222", "eu-west-1", "vpc-flow-logs-enabled-conformance-pack-zz9911", 4)
	s.AddNonCompliantRule("222222222222", "eu-west-1", "ec2-instance-no-public-ip", 2)
	s.AddCompliantRule("222222222222", "us-east-1", "encrypted-volumes")

	// sandbox: a single pack
	s.AddPack("333333333333", "APRA-sandbox-pack", 5, 10)
	s.AddNonCompliantRule("333333333333", "us-east-1", "access-keys-rotated", 6)
	s.AddNonCompliantRule("333333333333", "us-east-1", "guardduty-enabled-centralized", 1)

	return s
}
