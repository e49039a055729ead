package remediation

import "github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"

var builtin = map[string]entity.Remediation{
	"access-keys-rotated": {
		Title:       "Access Key Rotation",
		Description: "IAM access keys should be rotated regularly",
		Remediation: "Implement automated access key rotation using AWS Secrets Manager or Lambda functions",
		Priority:    PriorityHigh,
		Effort:      EffortMedium,
		Resources:   []string{"https://docs.aws.amazon.com/IAM/latest/UserGuide/id_credentials_access-keys.html#Using_RotateAccessKey"},
	},
	"acm-certificate-expiration-check": {
		Title:       "Certificate Expiration",
		Description: "SSL/TLS certificates should be renewed before expiration",
		Remediation: "Set up automated certificate renewal using ACM and CloudWatch alarms",
		Priority:    PriorityHigh,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/acm/latest/userguide/acm-renewal.html"},
	},
	"cloudtrail-enabled": {
		Title:       "CloudTrail Logging",
		Description: "CloudTrail should be enabled for audit logging",
		Remediation: "Enable CloudTrail in all regions with proper S3 bucket configuration and log file validation",
		Priority:    PriorityCritical,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/awscloudtrail/latest/userguide/cloudtrail-create-and-update-a-trail.html"},
		SSMDocument: "AWSConfigRemediation-CreateCloudTrail",
	},
	"ec2-security-group-attached-to-eni": {
		Title:       "Security Group Configuration",
		Description: "Security groups should follow least privilege principle",
		Remediation: "Review and update security group rules to restrict unnecessary access",
		Priority:    PriorityHigh,
		Effort:      EffortMedium,
		Resources:   []string{"https://docs.aws.amazon.com/vpc/latest/userguide/VPC_SecurityGroups.html"},
	},
	"encrypted-volumes": {
		Title:       "EBS Encryption",
		Description: "Attached EBS volumes should be encrypted",
		Remediation: "Enable EBS encryption by default and migrate unencrypted volumes through encrypted snapshots",
		Priority:    PriorityHigh,
		Effort:      EffortMedium,
		Resources:   []string{"https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/EBSEncryption.html"},
		SSMDocument: "AWSConfigRemediation-EncryptEBSVolume",
	},
	"guardduty-enabled-centralized": {
		Title:       "GuardDuty Threat Detection",
		Description: "GuardDuty should be enabled for threat detection",
		Remediation: "Enable GuardDuty in all accounts and regions, configure centralized management",
		Priority:    PriorityHigh,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/guardduty/latest/ug/guardduty_settingup.html"},
	},
	"iam-password-policy": {
		Title:       "IAM Password Policy",
		Description: "Strong password policy should be enforced",
		Remediation: "Configure IAM password policy with minimum length, complexity requirements and rotation",
		Priority:    PriorityMedium,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/IAM/latest/UserGuide/id_credentials_passwords_account-policy.html"},
		SSMDocument: "AWSConfigRemediation-SetIAMPasswordPolicy",
	},
	"mfa-enabled-for-iam-console-access": {
		Title:       "Multi-Factor Authentication",
		Description: "MFA should be enabled for all IAM users",
		Remediation: "Enforce MFA for all IAM users with console access using IAM policies",
		Priority:    PriorityCritical,
		Effort:      EffortMedium,
		Resources:   []string{"https://docs.aws.amazon.com/IAM/latest/UserGuide/id_credentials_mfa.html"},
		SSMDocument: "AWSConfigRemediation-EnableMFAForIAMUser",
	},
	"root-access-key-check": {
		Title:       "Root Access Keys",
		Description: "The root user should not have access keys",
		Remediation: "Delete the root user's access keys and deny root usage with a service control policy",
		Priority:    PriorityCritical,
		Effort:      EffortLow,
		Resources: []string{
			"https://docs.aws.amazon.com/IAM/latest/UserGuide/id_root-user.html#id_root-user_manage_add-key",
			"https://docs.aws.amazon.com/organizations/latest/userguide/orgs_manage_policies_scps_examples.html#example-scp-deny-root-user",
		},
	},
	"s3-bucket-public-access-prohibited": {
		Title:       "S3 Public Access",
		Description: "S3 buckets should not allow public access unless required",
		Remediation: "Enable S3 Block Public Access settings and review bucket policies",
		Priority:    PriorityCritical,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/AmazonS3/latest/userguide/access-control-block-public-access.html"},
	},
	"s3-bucket-public-read-prohibited": {
		Title:       "S3 Public Read",
		Description: "S3 buckets should block public read access",
		Remediation: "Enable S3 Block Public Access and remove public read grants from bucket ACLs and policies",
		Priority:    PriorityCritical,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/AmazonS3/latest/userguide/access-control-block-public-access.html"},
		SSMDocument: "AWSConfigRemediation-RemoveS3BucketPublicReadAccess",
	},
	"s3-bucket-public-write-prohibited": {
		Title:       "S3 Public Write",
		Description: "S3 buckets should block public write access",
		Remediation: "Enable S3 Block Public Access and remove public write grants from bucket ACLs and policies",
		Priority:    PriorityCritical,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/AmazonS3/latest/userguide/access-control-block-public-access.html"},
		SSMDocument: "AWSConfigRemediation-RemoveS3BucketPublicWriteAccess",
	},
	"subnet-auto-assign-public-ip-disabled": {
		Title:       "Subnet Public IPs",
		Description: "Subnets should not assign public IP addresses automatically",
		Remediation: "Disable auto-assign public IPv4 on subnets and use NAT or load balancers for ingress",
		Priority:    PriorityMedium,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/vpc/latest/userguide/vpc-ip-addressing.html#subnet-public-ip"},
		SSMDocument: "AWSConfigRemediation-DisableSubnetAutoAssignPublicIP",
	},
	"vpc-flow-logs-enabled": {
		Title:       "VPC Flow Logs",
		Description: "VPC Flow Logs should be enabled for network monitoring",
		Remediation: "Enable VPC Flow Logs delivering to CloudWatch Logs or S3 for every VPC",
		Priority:    PriorityMedium,
		Effort:      EffortLow,
		Resources:   []string{"https://docs.aws.amazon.com/vpc/latest/userguide/flow-logs.html"},
		SSMDocument: "AWSConfigRemediation-EnableVPCFlowLogs",
	},
}
