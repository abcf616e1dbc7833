package cloudapi

import "time"

// Instance is a compute workload (VM or container).
type Instance struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Type            string                 `json:"type,omitempty"`
	Brand           string                 `json:"brand,omitempty"`
	State           string                 `json:"state"`
	Image           string                 `json:"image,omitempty"`
	Memory          int64                  `json:"memory,omitempty"`
	Disk            int64                  `json:"disk,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	Tags            map[string]interface{} `json:"tags,omitempty"`
	Docker          bool                   `json:"docker,omitempty"`
	IPs             []string               `json:"ips,omitempty"`
	PrimaryIP       string                 `json:"primaryIp,omitempty"`
	Networks        []string               `json:"networks,omitempty"`
	FirewallEnabled bool                   `json:"firewall_enabled,omitempty"`
	ComputeNode     string                 `json:"compute_node,omitempty"`
	Package         string                 `json:"package,omitempty"`
	DNSNames        []string               `json:"dns_names,omitempty"`
	Created         time.Time              `json:"created,omitempty"`
	Updated         time.Time              `json:"updated,omitempty"`
}

// Image is a bootable template.
type Image struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Version     string                 `json:"version,omitempty"`
	OS          string                 `json:"os,omitempty"`
	Type        string                 `json:"type,omitempty"`
	State       string                 `json:"state,omitempty"`
	Owner       string                 `json:"owner,omitempty"`
	Public      bool                   `json:"public,omitempty"`
	PublishedAt string                 `json:"published_at,omitempty"`
	Description string                 `json:"description,omitempty"`
	Tags        map[string]interface{} `json:"tags,omitempty"`
	ACL         []string               `json:"acl,omitempty"`
	Error       *ImageError            `json:"error,omitempty"`
}

// ImageError carries the failure detail on images in state "failed".
type ImageError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Package is a resource-size SKU.
type Package struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Memory      int64  `json:"memory,omitempty"`
	Disk        int64  `json:"disk,omitempty"`
	Swap        int64  `json:"swap,omitempty"`
	LWPs        int64  `json:"lwps,omitempty"`
	VCPUs       int64  `json:"vcpus,omitempty"`
	Version     string `json:"version,omitempty"`
	Group       string `json:"group,omitempty"`
	Description string `json:"description,omitempty"`
	Active      *bool  `json:"active,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// Network is a viewable network, fabric or otherwise.
type Network struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Public           bool     `json:"public,omitempty"`
	Fabric           bool     `json:"fabric,omitempty"`
	Gateway          string   `json:"gateway,omitempty"`
	Subnet           string   `json:"subnet,omitempty"`
	ProvisionStartIP string   `json:"provision_start_ip,omitempty"`
	ProvisionEndIP   string   `json:"provision_end_ip,omitempty"`
	Resolvers        []string `json:"resolvers,omitempty"`
	InternetNAT      bool     `json:"internet_nat,omitempty"`
	VLANID           *int     `json:"vlan_id,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// NetworkIP is one IP on a network.
type NetworkIP struct {
	IP        string `json:"ip"`
	Reserved  bool   `json:"reserved,omitempty"`
	Free      bool   `json:"free,omitempty"`
	Managed   bool   `json:"managed,omitempty"`
	OwnerUUID string `json:"owner_uuid,omitempty"`
	BelongsTo string `json:"belongs_to_uuid,omitempty"`
}

// FabricVLAN is a fabric VLAN.
type FabricVLAN struct {
	VLANID      int    `json:"vlan_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// VPC is a fabric virtual private cloud.
type VPC struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Subnet      string `json:"subnet,omitempty"`
}

// FirewallRule is a cloud firewall rule.
type FirewallRule struct {
	ID          string `json:"id"`
	Rule        string `json:"rule"`
	Enabled     bool   `json:"enabled"`
	Global      bool   `json:"global,omitempty"`
	Log         bool   `json:"log,omitempty"`
	Description string `json:"description,omitempty"`
}

// Snapshot is a point-in-time snapshot of an instance.
type Snapshot struct {
	Name    string    `json:"name"`
	State   string    `json:"state"`
	Size    int64     `json:"size,omitempty"`
	Created time.Time `json:"created,omitempty"`
	Updated time.Time `json:"updated,omitempty"`
}

// NIC is a virtual interface on an instance, keyed by MAC.
type NIC struct {
	MAC     string `json:"mac"`
	IP      string `json:"ip,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	Netmask string `json:"netmask,omitempty"`
	Gateway string `json:"gateway,omitempty"`
	State   string `json:"state,omitempty"`
	Network string `json:"network,omitempty"`
}

// Disk is a virtual disk on a bhyve instance.
type Disk struct {
	ID      string `json:"id"`
	PCISlot string `json:"pci_slot,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Boot    bool   `json:"boot,omitempty"`
	State   string `json:"state,omitempty"`
}

// Volume is an NFS (or similar) shared volume.
type Volume struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Type     string                 `json:"type,omitempty"`
	Size     int64                  `json:"size,omitempty"`
	State    string                 `json:"state,omitempty"`
	Owner    string                 `json:"owner_uuid,omitempty"`
	Networks []string               `json:"networks,omitempty"`
	Refs     []string               `json:"refs,omitempty"`
	Tags     map[string]interface{} `json:"tags,omitempty"`
	Created  time.Time              `json:"created,omitempty"`
}

// Key is an SSH public key on the account or an RBAC user.
type Key struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	Key         string `json:"key"`
}

// AccessKey is an S3-style access key on the account.
type AccessKey struct {
	AccessKeyID     string    `json:"accesskeyid"`
	AccessKeySecret string    `json:"accesskeysecret,omitempty"`
	Status          string    `json:"status,omitempty"`
	Created         time.Time `json:"created,omitempty"`
}

// Account is the owning account.
type Account struct {
	ID               string    `json:"id"`
	Login            string    `json:"login"`
	Email            string    `json:"email,omitempty"`
	CompanyName      string    `json:"companyName,omitempty"`
	FirstName        string    `json:"firstName,omitempty"`
	LastName         string    `json:"lastName,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	TritonCNSEnabled bool      `json:"triton_cns_enabled,omitempty"`
	Created          time.Time `json:"created,omitempty"`
	Updated          time.Time `json:"updated,omitempty"`
}

// User is an RBAC sub-user of the account.
type User struct {
	ID          string    `json:"id"`
	Login       string    `json:"login"`
	Email       string    `json:"email,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Created     time.Time `json:"created,omitempty"`
	Updated     time.Time `json:"updated,omitempty"`
}

// Role is an RBAC role.
type Role struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Policies       []string `json:"policies,omitempty"`
	Members        []string `json:"members,omitempty"`
	DefaultMembers []string `json:"default_members,omitempty"`
}

// Policy is an RBAC policy.
type Policy struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rules       []string `json:"rules,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Migration is an instance migration record.
type Migration struct {
	MachineID       string    `json:"machine"`
	State           string    `json:"state"`
	Phase           string    `json:"phase,omitempty"`
	Automatic       bool      `json:"automatic,omitempty"`
	Error           string    `json:"error,omitempty"`
	Created         time.Time `json:"created_timestamp,omitempty"`
	Started         time.Time `json:"started_timestamp,omitempty"`
	Finished        time.Time `json:"finished_timestamp,omitempty"`
	ProgressHistory []struct {
		Phase     string `json:"phase,omitempty"`
		State     string `json:"state,omitempty"`
		Progress  int64  `json:"current_progress,omitempty"`
		Total     int64  `json:"total_progress,omitempty"`
		StartedAt string `json:"started_timestamp,omitempty"`
	} `json:"progress_history,omitempty"`
}
